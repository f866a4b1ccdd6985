package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/clip-game/internal/config"
	"github.com/wfunc/clip-game/internal/middleware"
	"github.com/wfunc/clip-game/internal/repository"
	"github.com/wfunc/clip-game/internal/service"
	"github.com/wfunc/clip-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	cfg            *config.Config
	services       *service.Services
	authHandler    *AuthHandler
	stateHandler   *StateHandler
	debugHandler   *DebugHandler
	wsHandler      *WSHandler
	hub            *websocket.Hub
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建服务
	svcConfig := &service.Config{
		JWTSecret:          cfg.Security.JWT.Secret,
		AccessTokenExpiry:  time.Duration(cfg.Security.JWT.ExpireHours) * time.Hour,
		RefreshTokenExpiry: time.Duration(cfg.Security.JWT.RefreshHours) * time.Hour,
		InitialWire:        cfg.Game.InitialWire,
	}
	services := service.NewServices(db, svcConfig, log)

	// 创建WebSocket Hub
	hub := websocket.NewHub(log)
	hub.SetMessageHandler(websocket.NewStateMessageHandler(hub, db, log))
	go hub.Run()

	// 创建处理器
	authHandler := NewAuthHandler(services.Auth)
	stateHandler := NewStateHandler(services.State, hub, cfg.Game.MaxSaveBytes)
	debugHandler := NewDebugHandler(services.State, repository.NewUserRepository(db))
	wsHandler := NewWSHandler(hub, &cfg.WebSocket, log)

	// 创建中间件
	authMiddleware := middleware.NewAuthMiddleware(services.Auth)

	router := &Router{
		engine:         engine,
		db:             db,
		cfg:            cfg,
		services:       services,
		authHandler:    authHandler,
		stateHandler:   stateHandler,
		debugHandler:   debugHandler,
		wsHandler:      wsHandler,
		hub:            hub,
		authMiddleware: authMiddleware,
		log:            log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API文档
	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			// 需要认证的路由
			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
			}
		}

		// 游戏状态路由（需要认证）
		state := v1.Group("/state")
		state.Use(r.authMiddleware.RequireAuth())
		{
			state.GET("", r.stateHandler.GetState)
			state.POST("/save", r.stateHandler.SaveState)
		}

		// 调试接口（生产模式下永远不挂载）
		if r.cfg.Server.Mode != "production" && r.cfg.Game.DebugEndpoints {
			debug := v1.Group("/debug")
			{
				debug.POST("/state/seed", r.debugHandler.SeedState)
				debug.GET("/state/:email", r.debugHandler.GetStateByEmail)
			}
			r.log.Warn("调试接口已启用", zap.String("mode", r.cfg.Server.Mode))
		}
	}

	// WebSocket路由（只读状态推送）
	ws := r.engine.Group("/ws")
	ws.Use(r.authMiddleware.RequireAuth())
	{
		ws.GET("/state", r.wsHandler.HandleConnection)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":   true,
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
