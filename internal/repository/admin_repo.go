package repository

import (
	"context"
	"errors"

	"acadstore_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== AdminRepository 管理员仓库 ====================

// AdminRepository 管理员仓库接口
type AdminRepository interface {
	GetByID(ctx context.Context, userID int64) (*model.AdminUser, error)
	Create(ctx context.Context, admin *model.AdminUser) error
	Count(ctx context.Context) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByID(ctx context.Context, userID int64) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *model.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AdminUser{}).Count(&count).Error
	return count, err
}

// ==================== SettingRepository 配置仓库 ====================

// SettingRepository 站点配置仓库接口
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, updatedBy int64) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建配置仓库
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting model.SiteSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string, updatedBy int64) error {
	return r.db.WithContext(ctx).Save(&model.SiteSetting{
		Key:       key,
		Value:     value,
		UpdatedBy: updatedBy,
	}).Error
}
