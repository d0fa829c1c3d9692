package model

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ==================== CartItem 购物车项 ====================

// CartItem 购物车行
// 归属二选一：登录用户填 UserID，匿名用户填 SessionToken + SessionExpiresAt
type CartItem struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName string  `gorm:"size:255;not null;index" json:"product_name"`
	Price       float64 `gorm:"not null" json:"price"` // 单价（卢比）
	Quantity    int     `gorm:"not null;default:1" json:"quantity"`

	// 归属
	UserID           *int64     `gorm:"index" json:"user_id,omitempty"`
	SessionToken     *string    `gorm:"size:255;index" json:"-"`
	SessionExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (*CartItem) TableName() string {
	return "cart_items"
}

// LineTotal 行小计（卢比）
func (c *CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

// ==================== CartOwner 购物车归属 ====================

// CartOwner 购物车归属键：登录用户为 UserID，匿名用户为 SessionToken，二选一
type CartOwner struct {
	UserID       int64
	SessionToken string
}

// IsUser 是否为登录用户
func (o CartOwner) IsUser() bool {
	return o.UserID > 0
}

// Valid 归属是否可用
func (o CartOwner) Valid() bool {
	return o.IsUser() || o.SessionToken != ""
}

// Key 限流/审计用的归属标识
func (o CartOwner) Key() string {
	if o.IsUser() {
		return "user:" + strconv.FormatInt(o.UserID, 10)
	}
	return "anon:" + o.SessionToken
}
