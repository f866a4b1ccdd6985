package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/clip-game/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStateNotFound 状态记录不存在（注册时应已创建）
var ErrStateNotFound = errors.New("游戏状态不存在")

// GameStateRepository 游戏状态仓储接口
type GameStateRepository interface {
	BaseRepository
	Create(ctx context.Context, state *models.GameState) error
	FindByUserID(ctx context.Context, userID uint) (*models.GameState, error)
	LockForUpdate(ctx context.Context, userID uint) (*models.GameState, error)
	// SaveColumns 单条UPDATE落盘指定列，并打上last_saved时间戳
	SaveColumns(ctx context.Context, userID uint, columns map[string]interface{}) (time.Time, error)
	AddDiamondsTx(tx *gorm.DB, userID uint, amount int64, countPurchase bool) error
	SpendDiamondsTx(tx *gorm.DB, userID uint, amount int64) error
}

// gameStateRepo 游戏状态仓储实现
type gameStateRepo struct {
	*BaseRepo
}

// NewGameStateRepository 创建游戏状态仓储
func NewGameStateRepository(db *gorm.DB) GameStateRepository {
	return &gameStateRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建游戏状态
func (r *gameStateRepo) Create(ctx context.Context, state *models.GameState) error {
	if state.LastSaved.IsZero() {
		state.LastSaved = time.Now()
	}
	return r.db.WithContext(ctx).Create(state).Error
}

// FindByUserID 根据用户ID查找游戏状态
func (r *gameStateRepo) FindByUserID(ctx context.Context, userID uint) (*models.GameState, error) {
	var state models.GameState
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

// LockForUpdate 锁定状态行用于更新（悲观锁）
func (r *gameStateRepo) LockForUpdate(ctx context.Context, userID uint) (*models.GameState, error) {
	var state models.GameState
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&state).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

// SaveColumns 单条UPDATE落盘（每个用户的存档写入是原子的）
func (r *gameStateRepo) SaveColumns(ctx context.Context, userID uint, columns map[string]interface{}) (time.Time, error) {
	now := time.Now()

	updates := make(map[string]interface{}, len(columns)+1)
	for col, val := range columns {
		updates[col] = val
	}
	updates["last_saved"] = now

	result := r.db.WithContext(ctx).
		Model(&models.GameState{}).
		Where("user_id = ?", userID).
		Updates(updates)

	if result.Error != nil {
		return time.Time{}, result.Error
	}

	if result.RowsAffected == 0 {
		return time.Time{}, ErrStateNotFound
	}

	return now, nil
}

// AddDiamondsTx 在事务中增加钻石（发放/购入同时累计终身计数）
func (r *gameStateRepo) AddDiamondsTx(tx *gorm.DB, userID uint, amount int64, countPurchase bool) error {
	updates := map[string]interface{}{
		"diamonds": gorm.Expr("diamonds + ?", amount),
	}
	if countPurchase {
		updates["total_diamonds_purchased"] = gorm.Expr("total_diamonds_purchased + ?", amount)
	}

	result := tx.Model(&models.GameState{}).
		Where("user_id = ?", userID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStateNotFound
	}

	return nil
}

// SpendDiamondsTx 在事务中扣减钻石（余额不足时拒绝）
func (r *gameStateRepo) SpendDiamondsTx(tx *gorm.DB, userID uint, amount int64) error {
	result := tx.Model(&models.GameState{}).
		Where("user_id = ? AND diamonds >= ?", userID, amount).
		Update("diamonds", gorm.Expr("diamonds - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errors.New("钻石不足")
	}

	return nil
}

// WithTx 使用事务
func (r *gameStateRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameStateRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// DiamondRecordRepository 钻石流水仓储接口
type DiamondRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.DiamondRecord) error
	FindByOrderNo(ctx context.Context, orderNo string) (*models.DiamondRecord, error)
	FindByUserID(ctx context.Context, userID uint, pagination *Pagination) ([]*models.DiamondRecord, error)
}

// diamondRecordRepo 钻石流水仓储实现
type diamondRecordRepo struct {
	*BaseRepo
}

// NewDiamondRecordRepository 创建钻石流水仓储
func NewDiamondRecordRepository(db *gorm.DB) DiamondRecordRepository {
	return &diamondRecordRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建流水记录
func (r *diamondRecordRepo) Create(ctx context.Context, record *models.DiamondRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByOrderNo 根据订单号查找
func (r *diamondRecordRepo) FindByOrderNo(ctx context.Context, orderNo string) (*models.DiamondRecord, error) {
	var record models.DiamondRecord
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("流水记录不存在")
		}
		return nil, err
	}
	return &record, nil
}

// FindByUserID 查找用户的流水记录
func (r *diamondRecordRepo) FindByUserID(ctx context.Context, userID uint, pagination *Pagination) ([]*models.DiamondRecord, error) {
	var records []*models.DiamondRecord
	query := r.db.WithContext(ctx).Model(&models.DiamondRecord{}).Where("user_id = ?", userID)

	// 获取总数
	var total int64
	query.Count(&total)
	pagination.Total = total

	// 分页查询
	err := query.
		Limit(pagination.PageSize).
		Offset((pagination.Page - 1) * pagination.PageSize).
		Order("created_at DESC").
		Find(&records).Error

	return records, err
}

// WithTx 使用事务
func (r *diamondRecordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &diamondRecordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
