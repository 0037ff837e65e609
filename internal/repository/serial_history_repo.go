package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// SerialHistoryRepository 兑换记录数据访问接口
type SerialHistoryRepository interface {
	Create(ctx context.Context, history *model.SerialHistory) error
	GetByID(ctx context.Context, id string) (*model.SerialHistory, error)
	ExistsForUserSerial(ctx context.Context, userID, serialID string) (bool, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SerialHistory, int64, error)
	// CreditHours 评价通过后一次性记入学时
	// 条件更新 is_reviewed = false，受影响行数为 0 表示已被其他请求记入
	CreditHours(ctx context.Context, historyID string, hours int) (int64, error)
}

type serialHistoryRepo struct {
	db *gorm.DB
}

// NewSerialHistoryRepo 创建 SerialHistoryRepository 实例
func NewSerialHistoryRepo(db *gorm.DB) SerialHistoryRepository {
	return &serialHistoryRepo{db: db}
}

func (r *serialHistoryRepo) Create(ctx context.Context, history *model.SerialHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *serialHistoryRepo) GetByID(ctx context.Context, id string) (*model.SerialHistory, error) {
	var history model.SerialHistory
	err := r.db.WithContext(ctx).
		Where("serial_history_id = ?", id).
		First(&history).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *serialHistoryRepo) ExistsForUserSerial(ctx context.Context, userID, serialID string) (bool, error) {
	var history model.SerialHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND serial_id = ?", userID, serialID).
		First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *serialHistoryRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SerialHistory, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.SerialHistory{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var histories []model.SerialHistory
	err := base.
		Preload("Activity").
		Order("redeemed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&histories).Error
	if err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}

func (r *serialHistoryRepo) CreditHours(ctx context.Context, historyID string, hours int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SerialHistory{}).
		Where("serial_history_id = ? AND is_reviewed = ?", historyID, false).
		Updates(map[string]interface{}{
			"is_reviewed":  true,
			"hours_earned": hours,
		})
	return result.RowsAffected, result.Error
}
