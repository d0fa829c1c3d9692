package dto

import "time"

// ==================== 商品展示 ====================

// ProductView 商品展示（面向店面，不暴露交付物 key）
type ProductView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// ==================== 商品管理 ====================

// CreateProductRequest 新建商品
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Slug        string  `json:"slug" binding:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required,max=64"`
}

// UpdateProductRequest 更新商品
type UpdateProductRequest struct {
	Name        string   `json:"name" binding:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Category    string   `json:"category" binding:"omitempty,max=64"`
	Active      *bool    `json:"active"`
}
