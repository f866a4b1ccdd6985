package models

import (
	"time"
)

// GameState 游戏状态表（每个用户一条记录）
type GameState struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	// 资源计数器（增量游戏允许小数累积）
	Paperclips float64 `gorm:"default:0" json:"paperclips"` // 回形针总数
	Money      float64 `gorm:"default:0" json:"money"`      // 现金
	Wire       float64 `gorm:"default:0" json:"wire"`       // 铁丝库存

	// 钻石（付费货币，只能走发放/消费路径）
	Diamonds               int64 `gorm:"default:0" json:"diamonds"`
	TotalDiamondsPurchased int64 `gorm:"default:0" json:"total_diamonds_purchased"` // 累计购入（终身计数）

	// 建筑计数器
	Autoclippers   int64 `gorm:"default:0" json:"autoclippers"`
	WireHarvesters int64 `gorm:"default:0" json:"wire_harvesters"`
	OreHarvesters  int64 `gorm:"default:0" json:"ore_harvesters"`
	Factories      int64 `gorm:"default:0" json:"factories"`

	// 解锁标记
	AutoclippersUnlocked bool `gorm:"default:false" json:"autoclippers_unlocked"`
	FactoriesUnlocked    bool `gorm:"default:false" json:"factories_unlocked"`
	PremiumUnlocked      bool `gorm:"default:false" json:"premium_unlocked"`

	// 最后一次成功保存时间（服务端打点）
	LastSaved time.Time `json:"last_saved"`

	// 关联（注意：不直接嵌入 User，避免循环依赖）
	// 查询时使用 Preload("User") 来加载用户信息
}

// TableName 指定GameState表名
func (GameState) TableName() string {
	return "game_states"
}

// Snapshot 导出客户端视角的状态快照（camelCase 线格式）
func (s *GameState) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"paperclips":           s.Paperclips,
		"money":                s.Money,
		"wire":                 s.Wire,
		"diamonds":             s.Diamonds,
		"autoclippers":         s.Autoclippers,
		"wireHarvesters":       s.WireHarvesters,
		"oreHarvesters":        s.OreHarvesters,
		"factories":            s.Factories,
		"autoclippersUnlocked": s.AutoclippersUnlocked,
		"factoriesUnlocked":    s.FactoriesUnlocked,
		"premiumUnlocked":      s.PremiumUnlocked,
		"lastSaved":            s.LastSaved,
	}
}
