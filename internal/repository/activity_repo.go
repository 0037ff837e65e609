package repository

import (
	"context"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// ActivityRepository 活动数据访问接口（本服务只读）
type ActivityRepository interface {
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	GetBySlug(ctx context.Context, slug string) (*model.Activity, error)
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) GetBySlug(ctx context.Context, slug string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}
