package repository

import (
	"context"
	"errors"
	"time"

	"acadstore_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件（管理端导出列表用）
type OrderFilter struct {
	Status    string
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
	UserID    int64
	Page      int
	PageSize  int
}

// OrderStats 订单统计
type OrderStats struct {
	TotalOrders      int64
	TotalAmount      int64 // paise
	PendingOrders    int64
	InProgressOrders int64
	CompletedOrders  int64
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByAccessToken(ctx context.Context, token string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	GetStats(ctx context.Context, startDate, endDate time.Time) (*OrderStats, error)
	Count(ctx context.Context) (int64, error)
	CountEncryptedPhones(ctx context.Context) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByAccessToken(ctx context.Context, token string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("access_token = ?", token).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.Status != "" {
		db = db.Where("order_status = ?", filter.Status)
	}
	if filter.UserID > 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.StartDate != nil {
		db = db.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("created_at <= ?", filter.EndDate)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("customer_name LIKE ? OR customer_email LIKE ? OR order_number LIKE ?",
			keyword, keyword, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).
		Update("order_status", status).Error
}

func (r *orderRepository) GetStats(ctx context.Context, startDate, endDate time.Time) (*OrderStats, error) {
	var stats OrderStats

	db := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate)

	var result struct {
		Count  int64
		Amount int64
	}
	if err := db.Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as amount").
		Scan(&result).Error; err != nil {
		return nil, err
	}
	stats.TotalOrders = result.Count
	stats.TotalAmount = result.Amount

	type statusCount struct {
		OrderStatus string
		Count       int64
	}
	var statusCounts []statusCount
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Select("order_status, COUNT(*) as count").
		Group("order_status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.OrderStatus {
		case model.OrderStatusPending:
			stats.PendingOrders = sc.Count
		case model.OrderStatusInProgress:
			stats.InProgressOrders = sc.Count
		case model.OrderStatusCompleted:
			stats.CompletedOrders = sc.Count
		}
	}

	return &stats, nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountEncryptedPhones(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_phone LIKE ?", "enc:%").
		Count(&count).Error
	return count, err
}
