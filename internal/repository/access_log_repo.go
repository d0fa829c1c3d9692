package repository

import (
	"context"
	"time"

	"acadstore_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== AccessLogRepository 审计日志仓库 ====================

// AccessLogRepository 审计日志仓库接口（追加式，只插不改）
type AccessLogRepository interface {
	Create(ctx context.Context, entry *model.AccessLog) error
	CountByTable(ctx context.Context, since time.Time) (map[string]int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type accessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository 创建审计日志仓库
func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Create(ctx context.Context, entry *model.AccessLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *accessLogRepository) CountByTable(ctx context.Context, since time.Time) (map[string]int64, error) {
	type tableCount struct {
		TableName string
		Count     int64
	}
	var rows []tableCount
	err := r.db.WithContext(ctx).Model(&model.AccessLog{}).
		Where("created_at >= ?", since).
		Select("table_name, COUNT(*) as count").
		Group("table_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TableName] = row.Count
	}
	return counts, nil
}

func (r *accessLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.AccessLog{})
	return result.RowsAffected, result.Error
}
