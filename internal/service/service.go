package service

import (
	"time"

	"github.com/wfunc/clip-game/internal/repository"
	"github.com/wfunc/clip-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	InitialWire        float64
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "change-me-in-production",
		AccessTokenExpiry:  24 * time.Hour,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		InitialWire:        1000,
	}
}

// Services 服务集合
type Services struct {
	Auth  AuthService
	State StateService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, config *Config, log *zap.Logger) *Services {
	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewUserAuthRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	stateRepo := repository.NewGameStateRepository(db)
	diamondRepo := repository.NewDiamondRecordRepository(db)

	// 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		config.JWTSecret,
		config.AccessTokenExpiry,
		config.RefreshTokenExpiry,
	)

	// 初始化服务
	authService := NewAuthService(
		db,
		userRepo,
		authRepo,
		sessionRepo,
		stateRepo,
		jwtManager,
		config,
		log,
	)

	stateService := NewStateService(
		db,
		stateRepo,
		diamondRepo,
		log,
	)

	return &Services{
		Auth:  authService,
		State: stateService,
	}
}
