package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	userOnce sync.Once
	user     UserRepository

	userAuthOnce sync.Once
	userAuth     UserAuthRepository

	userSessionOnce sync.Once
	userSession     UserSessionRepository

	gameStateOnce sync.Once
	gameState     GameStateRepository

	diamondRecordOnce sync.Once
	diamondRecord     DiamondRecordRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// User 获取用户仓储
func (m *Manager) User() UserRepository {
	m.userOnce.Do(func() {
		m.user = NewUserRepository(m.db)
	})
	return m.user
}

// UserAuth 获取用户认证仓储
func (m *Manager) UserAuth() UserAuthRepository {
	m.userAuthOnce.Do(func() {
		m.userAuth = NewUserAuthRepository(m.db)
	})
	return m.userAuth
}

// UserSession 获取用户会话仓储
func (m *Manager) UserSession() UserSessionRepository {
	m.userSessionOnce.Do(func() {
		m.userSession = NewUserSessionRepository(m.db)
	})
	return m.userSession
}

// GameState 获取游戏状态仓储
func (m *Manager) GameState() GameStateRepository {
	m.gameStateOnce.Do(func() {
		m.gameState = NewGameStateRepository(m.db)
	})
	return m.gameState
}

// DiamondRecord 获取钻石流水仓储
func (m *Manager) DiamondRecord() DiamondRecordRepository {
	m.diamondRecordOnce.Do(func() {
		m.diamondRecord = NewDiamondRecordRepository(m.db)
	})
	return m.diamondRecord
}

// WithTransaction 在事务中执行操作
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
