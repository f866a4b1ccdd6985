package database

import (
	"fmt"

	"github.com/wfunc/clip-game/internal/logger"
	"github.com/wfunc/clip-game/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移所有数据表
func AutoMigrate() error {
	return AutoMigrateDB(DB)
}

// AutoMigrateDB 在指定连接上执行自动迁移（供维护工具复用）
func AutoMigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}

	logger.Info("开始数据库迁移...")

	err := db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 游戏系统
		&models.GameState{},
		&models.DiamondRecord{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库迁移完成")
	return nil
}
