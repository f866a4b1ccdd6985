package admin

import (
	"context"
	"fmt"

	"github.com/wfunc/clip-game/internal/database"
	"github.com/wfunc/clip-game/internal/repository"
	"github.com/wfunc/clip-game/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Admin 维护操作集合
//
// 复用生产代码的仓储和服务，保证维护脚本和线上写路径行为一致。
// 不暴露任何HTTP路由，只能通过clipadmin命令行调用。
type Admin struct {
	db       *gorm.DB
	repos    *repository.Manager
	services *service.Services
	log      *zap.Logger
}

// New 创建维护操作集合
func New(db *gorm.DB, svcConfig *service.Config, log *zap.Logger) *Admin {
	return &Admin{
		db:       db,
		repos:    repository.NewManager(db),
		services: service.NewServices(db, svcConfig, log),
		log:      log,
	}
}

// GrantResult 单条发放结果
type GrantResult struct {
	Email   string
	OrderNo string
	Err     error
}

// GrantDiamonds 批量发放钻石
//
// 逐条处理，单条失败（用户不存在等）记录下来继续处理后续记录
func (a *Admin) GrantDiamonds(ctx context.Context, amount int64, emails []string) []GrantResult {
	results := make([]GrantResult, 0, len(emails))

	for _, email := range emails {
		result := GrantResult{Email: email}

		user, err := a.repos.User().FindByEmail(ctx, email)
		if err != nil {
			result.Err = fmt.Errorf("用户不存在: %s", email)
			a.log.Warn("Grant skipped: user not found", zap.String("email", email))
			results = append(results, result)
			continue
		}

		record, err := a.services.State.GrantDiamonds(ctx, user.ID, amount, "clipadmin", "管理员发放")
		if err != nil {
			result.Err = err
			a.log.Error("Grant failed",
				zap.String("email", email),
				zap.Uint("userID", user.ID),
				zap.Error(err))
			results = append(results, result)
			continue
		}

		result.OrderNo = record.OrderNo
		results = append(results, result)
	}

	return results
}

// ResetPassword 重置密码并撤销所有会话
func (a *Admin) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := a.repos.User().FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("用户不存在: %s", email)
	}

	return a.services.Auth.ResetPassword(ctx, user.ID, newPassword)
}

// SetFlag 修正解锁标记
func (a *Admin) SetFlag(ctx context.Context, email, flag string, value bool) error {
	user, err := a.repos.User().FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("用户不存在: %s", email)
	}

	return a.services.State.SetFlag(ctx, user.ID, flag, value)
}

// Migrate 执行数据库迁移
func (a *Admin) Migrate() error {
	return database.AutoMigrateDB(a.db)
}

// UserInfo 用户检视信息
type UserInfo struct {
	UserID   uint
	Username string
	Email    string
	Nickname string
	Status   string
	State    map[string]interface{}
}

// Show 查询用户及游戏状态
func (a *Admin) Show(ctx context.Context, email string) (*UserInfo, error) {
	user, err := a.repos.User().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("用户不存在: %s", email)
	}

	info := &UserInfo{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Nickname: user.Nickname,
		Status:   user.Status,
	}

	state, err := a.services.State.Get(ctx, user.ID)
	if err != nil {
		return info, nil
	}

	snapshot := state.Snapshot()
	snapshot["totalDiamondsPurchased"] = state.TotalDiamondsPurchased
	info.State = snapshot

	return info, nil
}
