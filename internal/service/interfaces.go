package service

import (
	"context"

	"github.com/wfunc/clip-game/internal/models"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID uint, sessionID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeAllSessions(ctx context.Context, userID uint) error
	ResetPassword(ctx context.Context, userID uint, newPassword string) error
}

// StateService 游戏状态服务接口
type StateService interface {
	// Get 获取完整状态快照
	Get(ctx context.Context, userID uint) (*models.GameState, error)
	// Save 保存客户端提交的字段子集，返回实际落盘的子集（线格式）
	Save(ctx context.Context, userID uint, payload map[string]interface{}) (map[string]interface{}, error)
	// GrantDiamonds 发放钻石（累计终身计数并记录流水）
	GrantDiamonds(ctx context.Context, userID uint, amount int64, source, description string) (*models.DiamondRecord, error)
	// SetFlag 修正解锁标记（维护工具使用，与存档共用字段注册表）
	SetFlag(ctx context.Context, userID uint, flag string, value bool) error
	// Seed 覆盖写入状态（仅调试接口使用）
	Seed(ctx context.Context, userID uint, state *models.GameState) error
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
	Nickname        string `json:"nickname"`
	IP              string `json:"-"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
	Device   string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims 令牌声明
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}
