package repository

import (
	"context"
	"errors"
	"time"

	"acadstore_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== CartRepository 购物车仓库 ====================

// CartRepository 购物车仓库接口
type CartRepository interface {
	ListByOwner(ctx context.Context, owner model.CartOwner) ([]model.CartItem, error)
	GetByOwnerAndID(ctx context.Context, owner model.CartOwner, id int64) (*model.CartItem, error)
	GetByOwnerAndName(ctx context.Context, owner model.CartOwner, productName string) (*model.CartItem, error)
	Create(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, owner model.CartOwner, id int64) error
	DeleteByOwner(ctx context.Context, owner model.CartOwner) error

	// 匿名行换绑到登录用户（登录合并用）
	ReassignToUser(ctx context.Context, sessionToken string, userID int64) error

	// 清理任务
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// ownerScope 按归属过滤
func ownerScope(owner model.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.IsUser() {
			return db.Where("user_id = ?", owner.UserID)
		}
		return db.Where("session_token = ?", owner.SessionToken)
	}
}

func (r *cartRepository) ListByOwner(ctx context.Context, owner model.CartOwner) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).
		Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *cartRepository) GetByOwnerAndID(ctx context.Context, owner model.CartOwner, id int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) GetByOwnerAndName(ctx context.Context, owner model.CartOwner, productName string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).
		Where("product_name = ?", productName).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) Create(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *cartRepository) Delete(ctx context.Context, owner model.CartOwner, id int64) error {
	return r.db.WithContext(ctx).Scopes(ownerScope(owner)).
		Where("id = ?", id).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) DeleteByOwner(ctx context.Context, owner model.CartOwner) error {
	return r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) ReassignToUser(ctx context.Context, sessionToken string, userID int64) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("session_token = ?", sessionToken).
		Updates(map[string]interface{}{
			"user_id":            userID,
			"session_token":      nil,
			"session_expires_at": nil,
		}).Error
}

func (r *cartRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_token IS NOT NULL AND session_expires_at < ?", now).
		Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *cartRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}
