package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态（约定值，不做强约束，管理端可写任意文本）
const (
	OrderStatusPending    = "pending"     // 待处理（等待买家转账截图）
	OrderStatusInProgress = "in_progress" // 处理中
	OrderStatusCompleted  = "completed"   // 已完成（可下载交付物）
)

// PaymentMethod 支付方式
const (
	PaymentMethodUPI = "upi_manual" // UPI 转账，线下人工核对
)

// ==================== OrderLine 订单行快照 ====================

// OrderLine 下单时的商品快照，整体以 JSONB 存在订单上
type OrderLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"` // 单价（卢比，下单时原样保留）
	Quantity int     `json:"quantity"`
}

// ==================== Order 订单主表 ====================

// Order 订单
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber string `gorm:"size:64;uniqueIndex;not null"`

	// 买家信息
	CustomerName  string `gorm:"size:255;not null"`
	CustomerEmail string `gorm:"size:255;not null;index"`
	CustomerPhone string `gorm:"size:512"` // AES-GCM 加密存储

	// 商品快照（JSONB）
	Items datatypes.JSON `gorm:"type:jsonb"`

	// 金额（paise 为单位存储，入库时 ×100）
	TotalAmount int64 `gorm:"not null"`
	Currency    string `gorm:"size:10;default:INR"`

	// 状态
	OrderStatus   string `gorm:"size:32;index;default:pending"`
	PaymentMethod string `gorm:"size:64;default:upi_manual"`

	// 游客查单凭证
	AccessToken string `gorm:"size:64;uniqueIndex;not null"`

	// 归属（游客下单为空）
	UserID *int64 `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetTotal 获取订单总额（卢比）
func (o *Order) GetTotal() float64 {
	return float64(o.TotalAmount) / 100
}
