package models

// 钻石流水类型
const (
	DiamondTypeGrant    = "grant"    // 运维发放
	DiamondTypePurchase = "purchase" // 充值购入
	DiamondTypeSpend    = "spend"    // 游戏内消费
)

// DiamondRecord 钻石流水表
type DiamondRecord struct {
	BaseModel
	UserID        uint    `gorm:"not null;index" json:"user_id"`
	OrderNo       string  `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	Type          string  `gorm:"size:20;not null;index" json:"type"` // grant, purchase, spend
	Amount        int64   `gorm:"not null" json:"amount"`
	BeforeBalance int64   `json:"before_balance"`
	AfterBalance  int64   `json:"after_balance"`
	Source        string  `gorm:"size:50" json:"source"` // clipadmin, iap, debug
	Description   string  `gorm:"size:500" json:"description"`
	Status        string  `gorm:"size:20;default:'success';index" json:"status"`
	Metadata      JSONMap `gorm:"type:json" json:"metadata"`

	// 关联（注意：不直接嵌入 User，避免循环依赖）
}
