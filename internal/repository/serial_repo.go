package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"activity-hours/backend/internal/model"
)

// SerialRepository 兑换码数据访问接口
type SerialRepository interface {
	Create(ctx context.Context, serial *model.Serial) error
	GetByCode(ctx context.Context, code string) (*model.Serial, error)
	// GetByCodeForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询兑换码，
	// 并发核销同一个码时两个请求在此处串行化
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Serial, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// ExistsForParticipant 查询活动内是否已对该参与者标识签发过兑换码
	ExistsForParticipant(ctx context.Context, activityID, identifierValue string) (bool, error)
	GetForParticipant(ctx context.Context, activityID, identifierValue string) (*model.Serial, error)
	// MarkSent 仅当仍处于 pending 时推进到 sent（保证状态只前进不回退）
	MarkSent(ctx context.Context, serialID string) error
	// MarkRedeemed 核销：绑定用户并进入终态
	// 条件更新 status <> redeemed，受影响行数为 0 表示已被并发核销
	MarkRedeemed(ctx context.Context, serialID, userID string) (int64, error)
}

type serialRepo struct {
	db *gorm.DB
}

// NewSerialRepo 创建 SerialRepository 实例
func NewSerialRepo(db *gorm.DB) SerialRepository {
	return &serialRepo{db: db}
}

func (r *serialRepo) Create(ctx context.Context, serial *model.Serial) error {
	return r.db.WithContext(ctx).Create(serial).Error
}

func (r *serialRepo) GetByCode(ctx context.Context, code string) (*model.Serial, error) {
	var serial model.Serial
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&serial).Error
	if err != nil {
		return nil, err
	}
	return &serial, nil
}

// GetByCodeForUpdate 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *serialRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.Serial, error) {
	var serial model.Serial
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&serial).Error
	if err != nil {
		return nil, err
	}
	return &serial, nil
}

func (r *serialRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Serial{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *serialRepo) ExistsForParticipant(ctx context.Context, activityID, identifierValue string) (bool, error) {
	_, err := r.GetForParticipant(ctx, activityID, identifierValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *serialRepo) GetForParticipant(ctx context.Context, activityID, identifierValue string) (*model.Serial, error) {
	var serial model.Serial
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND identifier_value = ?", activityID, identifierValue).
		First(&serial).Error
	if err != nil {
		return nil, err
	}
	return &serial, nil
}

func (r *serialRepo) MarkSent(ctx context.Context, serialID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Serial{}).
		Where("serial_id = ? AND status = ?", serialID, model.SerialStatusPending).
		Updates(map[string]interface{}{
			"status":  model.SerialStatusSent,
			"sent_at": now,
		}).Error
}

func (r *serialRepo) MarkRedeemed(ctx context.Context, serialID, userID string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Serial{}).
		Where("serial_id = ? AND status <> ?", serialID, model.SerialStatusRedeemed).
		Updates(map[string]interface{}{
			"status":      model.SerialStatusRedeemed,
			"user_id":     userID,
			"redeemed_at": now,
		})
	return result.RowsAffected, result.Error
}
