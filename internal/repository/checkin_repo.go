package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// CheckinRepository 签到数据访问接口
type CheckinRepository interface {
	Create(ctx context.Context, checkin *model.Checkin) error
	GetByID(ctx context.Context, id string) (*model.Checkin, error)
	GetByDedupHash(ctx context.Context, hash string) (*model.Checkin, error)
	ListByActivity(ctx context.Context, activityID string, offset, limit int) ([]model.Checkin, int64, error)
	// MarkSerialSent 标记兑换码已对该签到发出（记录唯一的一次可变更新）
	MarkSerialSent(ctx context.Context, checkinID string) error
}

type checkinRepo struct {
	db *gorm.DB
}

// NewCheckinRepo 创建 CheckinRepository 实例
func NewCheckinRepo(db *gorm.DB) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) Create(ctx context.Context, checkin *model.Checkin) error {
	return r.db.WithContext(ctx).Create(checkin).Error
}

func (r *checkinRepo) GetByID(ctx context.Context, id string) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.db.WithContext(ctx).
		Where("checkin_id = ?", id).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

func (r *checkinRepo) GetByDedupHash(ctx context.Context, hash string) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.db.WithContext(ctx).
		Where("dedup_hash = ?", hash).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

func (r *checkinRepo) ListByActivity(ctx context.Context, activityID string, offset, limit int) ([]model.Checkin, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.Checkin{}).Where("activity_id = ?", activityID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var checkins []model.Checkin
	err := base.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&checkins).Error
	if err != nil {
		return nil, 0, err
	}
	return checkins, total, nil
}

func (r *checkinRepo) MarkSerialSent(ctx context.Context, checkinID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Checkin{}).
		Where("checkin_id = ?", checkinID).
		Updates(map[string]interface{}{
			"serial_sent":    true,
			"serial_sent_at": time.Now(),
		}).Error
}
