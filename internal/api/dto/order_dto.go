package dto

import "time"

// ==================== 下单 ====================

// OrderItemInput 下单商品行
type OrderItemInput struct {
	Name     string  `json:"name" binding:"required,max=255"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"gte=0"`
}

// CreateOrderRequest 下单请求（字段名沿用前端 checkout 的提交格式）
type CreateOrderRequest struct {
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	TotalAmount   float64          `json:"totalAmount" binding:"required,gt=0"`
	CustomerName  string           `json:"customerName" binding:"required,max=255"`
	CustomerEmail string           `json:"customerEmail" binding:"required,email"`
	CustomerPhone string           `json:"customerPhone" binding:"omitempty,max=32"`
}

// CreateOrderResponse 下单响应
type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// ==================== 查单 ====================

// OrderView 订单展示
type OrderView struct {
	ID            int64            `json:"id"`
	OrderNumber   string           `json:"order_number"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
	Items         []OrderItemInput `json:"items"`
	TotalAmount   float64          `json:"total_amount"` // 卢比
	Currency      string           `json:"currency"`
	OrderStatus   string           `json:"order_status"`
	PaymentMethod string           `json:"payment_method"`
	CreatedAt     time.Time        `json:"created_at"`
}

// DownloadLink 交付物下载链接
type DownloadLink struct {
	ProductName string    `json:"product_name"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ==================== 支付指引 ====================

// PaymentInfoResponse 付款指引（UPI 收款信息 + 前端倒计时时长）
type PaymentInfoResponse struct {
	UpiID            string `json:"upi_id"`
	PayeeName        string `json:"payee_name"`
	QRPayload        string `json:"qr_payload"`
	CountdownSeconds int    `json:"countdown_seconds"`
	Instructions     string `json:"instructions"`
}
