package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户基础信息表
type User struct {
	BaseModel
	Username    string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Nickname    string     `gorm:"size:100" json:"nickname"`
	Email       string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Status      string     `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `gorm:"size:50" json:"last_login_ip"`

	// 关联（注意：GameState 不直接嵌入，避免循环依赖）
	Auth     UserAuth      `gorm:"foreignKey:UserID" json:"-"`
	Sessions []UserSession `gorm:"foreignKey:UserID" json:"-"`
}

// UserAuth 用户认证信息表
type UserAuth struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	LoginAttempts int        `gorm:"default:0" json:"login_attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserSession 用户会话表
type UserSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	SessionID    string    `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	Token        string    `gorm:"uniqueIndex;size:255;not null" json:"token"`
	IP           string    `gorm:"size:50" json:"ip"`
	UserAgent    string    `gorm:"size:255" json:"user_agent"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpireAt     time.Time `json:"expire_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联（注意：不直接嵌入 User，避免循环依赖）
	// 查询时使用 Preload("User") 来加载用户信息
}

// TableName 指定User表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 创建前的钩子
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// 设置默认昵称
	if u.Nickname == "" {
		u.Nickname = u.Username
	}
	// 设置默认状态
	if u.Status == "" {
		u.Status = "active"
	}
	return nil
}

// IsActive 检查用户是否激活
func (u *User) IsActive() bool {
	return u.Status == "active"
}

// CanLogin 检查用户是否可以登录
func (u *User) CanLogin() bool {
	return u.Status == "active"
}

// UpdateLoginInfo 更新登录信息
func (u *User) UpdateLoginInfo(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
}
