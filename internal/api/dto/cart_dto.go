package dto

import (
	"time"

	"acadstore_v1_202608/internal/model"
)

// ==================== 会话 ====================

// CartSessionResponse 匿名会话令牌响应
type CartSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ==================== 购物车操作 ====================

// AddToCartRequest 加购请求
type AddToCartRequest struct {
	ProductName string  `json:"product_name" binding:"required,max=255"`
	Price       float64 `json:"price" binding:"required,gte=0"`
}

// UpdateQuantityRequest 改数量请求
// Quantity 用指针，0 是合法值（等价于删除该行）
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items      []model.CartItem `json:"items"`
	TotalPrice float64          `json:"total_price"`
	ItemCount  int              `json:"item_count"`
}
