package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/clip-game/internal/errors"
	"github.com/wfunc/clip-game/internal/logger"
	"github.com/wfunc/clip-game/internal/models"
	"github.com/wfunc/clip-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fieldKind 存档字段类型
type fieldKind int

const (
	fieldFloat fieldKind = iota // 资源计数器（允许小数）
	fieldInt                    // 建筑计数器（整数，截断小数部分）
	fieldBool                   // 解锁标记
)

// saveField 线格式字段到数据库列的映射
type saveField struct {
	column string
	kind   fieldKind
}

// saveFields 可保存字段注册表（白名单，total_diamonds_purchased 永远不在其中）
var saveFields = map[string]saveField{
	"paperclips":           {"paperclips", fieldFloat},
	"money":                {"money", fieldFloat},
	"wire":                 {"wire", fieldFloat},
	"diamonds":             {"diamonds", fieldInt},
	"autoclippers":         {"autoclippers", fieldInt},
	"wireHarvesters":       {"wire_harvesters", fieldInt},
	"oreHarvesters":        {"ore_harvesters", fieldInt},
	"factories":            {"factories", fieldInt},
	"autoclippersUnlocked": {"autoclippers_unlocked", fieldBool},
	"factoriesUnlocked":    {"factories_unlocked", fieldBool},
	"premiumUnlocked":      {"premium_unlocked", fieldBool},
}

// flagFields 解锁标记注册表（维护工具的set-flag与存档共用列名）
var flagFields = map[string]string{
	"autoclippersUnlocked": "autoclippers_unlocked",
	"factoriesUnlocked":    "factories_unlocked",
	"premiumUnlocked":      "premium_unlocked",
}

// stateService 游戏状态服务实现
type stateService struct {
	db          *gorm.DB
	stateRepo   repository.GameStateRepository
	diamondRepo repository.DiamondRecordRepository
	log         *zap.Logger
}

// NewStateService 创建游戏状态服务
func NewStateService(
	db *gorm.DB,
	stateRepo repository.GameStateRepository,
	diamondRepo repository.DiamondRecordRepository,
	log *zap.Logger,
) StateService {
	return &stateService{
		db:          db,
		stateRepo:   stateRepo,
		diamondRepo: diamondRepo,
		log:         log,
	}
}

// Get 获取完整状态快照
func (s *stateService) Get(ctx context.Context, userID uint) (*models.GameState, error) {
	return s.stateRepo.FindByUserID(ctx, userID)
}

// Save 保存客户端提交的字段子集
//
// 规则：
//   - 未注册的字段直接忽略（客户端可能带上版本号等额外键）
//   - 已注册字段的值类型不对（含NaN/Inf）则整个请求拒绝
//   - 数值为负时收敛到0，整数列截断小数部分（向零取整），超过int64上限时封顶
//   - 全部字段在一条UPDATE中落盘，并打上last_saved时间戳
//
// 返回实际落盘的子集（仅客户端提交过的键，值为修正后的结果）
func (s *stateService) Save(ctx context.Context, userID uint, payload map[string]interface{}) (map[string]interface{}, error) {
	start := time.Now()

	columns := make(map[string]interface{}, len(payload))
	saved := make(map[string]interface{}, len(payload))
	fields := make([]string, 0, len(payload))

	for name, raw := range payload {
		field, ok := saveFields[name]
		if !ok {
			continue
		}

		switch field.kind {
		case fieldFloat:
			v, ok := raw.(float64)
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidSaveField, "字段 %s 需要数值", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Newf(errors.ErrInvalidSaveField, "字段 %s 的数值无效", name)
			}
			if v < 0 {
				v = 0
			}
			columns[field.column] = v
			saved[name] = v

		case fieldInt:
			v, ok := raw.(float64)
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidSaveField, "字段 %s 需要数值", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Newf(errors.ErrInvalidSaveField, "字段 %s 的数值无效", name)
			}
			// 超出int64上限的值先封顶再转换，
			// 溢出的float64到int64转换结果不确定，会把有效的正数变成0
			var n int64
			switch {
			case v >= math.MaxInt64:
				n = math.MaxInt64
			case v < 0:
				n = 0
			default:
				n = int64(v) // 向零截断
			}
			columns[field.column] = n
			saved[name] = n

		case fieldBool:
			v, ok := raw.(bool)
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidSaveField, "字段 %s 需要布尔值", name)
			}
			columns[field.column] = v
			saved[name] = v
		}

		fields = append(fields, name)
	}

	savedAt, err := s.stateRepo.SaveColumns(ctx, userID, columns)
	if err != nil {
		if err == repository.ErrStateNotFound {
			return nil, errors.New(errors.ErrStateNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseUpdate)
	}

	saved["lastSaved"] = savedAt

	logger.LogSaveEvent(userID, fields, time.Since(start))

	return saved, nil
}

// GrantDiamonds 发放钻石（事务内锁定状态行，累计终身计数并记录流水）
func (s *stateService) GrantDiamonds(ctx context.Context, userID uint, amount int64, source, description string) (*models.DiamondRecord, error) {
	if amount <= 0 {
		return nil, errors.New(errors.ErrInvalidParam, "发放数量必须为正数")
	}

	var record *models.DiamondRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stateRepo := s.stateRepo.WithTx(tx).(repository.GameStateRepository)

		// 锁定状态行，保证before/after余额一致
		state, err := stateRepo.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := stateRepo.AddDiamondsTx(tx, userID, amount, true); err != nil {
			return err
		}

		record = &models.DiamondRecord{
			UserID:        userID,
			OrderNo:       uuid.New().String(),
			Type:          models.DiamondTypeGrant,
			Amount:        amount,
			BeforeBalance: state.Diamonds,
			AfterBalance:  state.Diamonds + amount,
			Source:        source,
			Description:   description,
			Status:        "success",
		}

		diamondRepo := s.diamondRepo.WithTx(tx).(repository.DiamondRecordRepository)
		return diamondRepo.Create(ctx, record)
	})

	if err != nil {
		if err == repository.ErrStateNotFound {
			return nil, errors.New(errors.ErrStateNotFound)
		}
		return nil, fmt.Errorf("发放钻石失败: %w", err)
	}

	s.log.Info("Diamonds granted",
		zap.Uint("userID", userID),
		zap.Int64("amount", amount),
		zap.String("orderNo", record.OrderNo),
		zap.String("source", source))

	return record, nil
}

// SetFlag 修正解锁标记（不更新last_saved，维护操作不算存档）
func (s *stateService) SetFlag(ctx context.Context, userID uint, flag string, value bool) error {
	column, ok := flagFields[flag]
	if !ok {
		return errors.Newf(errors.ErrInvalidFlag, "未知的标记 %s", flag)
	}

	result := s.db.WithContext(ctx).
		Model(&models.GameState{}).
		Where("user_id = ?", userID).
		Update(column, value)

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrDatabaseUpdate)
	}

	if result.RowsAffected == 0 {
		return errors.New(errors.ErrStateNotFound)
	}

	s.log.Info("Flag updated",
		zap.Uint("userID", userID),
		zap.String("flag", flag),
		zap.Bool("value", value))

	return nil
}

// Seed 覆盖写入状态（调试接口专用，直接整行覆盖）
func (s *stateService) Seed(ctx context.Context, userID uint, state *models.GameState) error {
	existing, err := s.stateRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == repository.ErrStateNotFound {
			state.UserID = userID
			return s.stateRepo.Create(ctx, state)
		}
		return err
	}

	columns := map[string]interface{}{
		"paperclips":               state.Paperclips,
		"money":                    state.Money,
		"wire":                     state.Wire,
		"diamonds":                 state.Diamonds,
		"total_diamonds_purchased": state.TotalDiamondsPurchased,
		"autoclippers":             state.Autoclippers,
		"wire_harvesters":          state.WireHarvesters,
		"ore_harvesters":           state.OreHarvesters,
		"factories":                state.Factories,
		"autoclippers_unlocked":    state.AutoclippersUnlocked,
		"factories_unlocked":       state.FactoriesUnlocked,
		"premium_unlocked":         state.PremiumUnlocked,
	}

	_, err = s.stateRepo.SaveColumns(ctx, existing.UserID, columns)
	return err
}
