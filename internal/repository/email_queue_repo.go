package repository

import (
	"context"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// EmailQueueRepository 邮件队列数据访问接口
type EmailQueueRepository interface {
	Enqueue(ctx context.Context, item *model.EmailQueueItem) error
	GetByID(ctx context.Context, id string) (*model.EmailQueueItem, error)
	// NextBatch 按创建时间升序取一批待发送条目（FIFO）
	NextBatch(ctx context.Context, limit int) ([]model.EmailQueueItem, error)
	Update(ctx context.Context, item *model.EmailQueueItem) error
	// ResetFailed 人工重置终态条目：failed → queued，attempts 归零
	ResetFailed(ctx context.Context, id string) (int64, error)
	ListByStatus(ctx context.Context, status model.EmailStatus, offset, limit int) ([]model.EmailQueueItem, int64, error)
}

type emailQueueRepo struct {
	db *gorm.DB
}

// NewEmailQueueRepo 创建 EmailQueueRepository 实例
func NewEmailQueueRepo(db *gorm.DB) EmailQueueRepository {
	return &emailQueueRepo{db: db}
}

func (r *emailQueueRepo) Enqueue(ctx context.Context, item *model.EmailQueueItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *emailQueueRepo) GetByID(ctx context.Context, id string) (*model.EmailQueueItem, error) {
	var item model.EmailQueueItem
	err := r.db.WithContext(ctx).
		Where("email_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *emailQueueRepo) NextBatch(ctx context.Context, limit int) ([]model.EmailQueueItem, error) {
	var items []model.EmailQueueItem
	err := r.db.WithContext(ctx).
		Where("status = ?", model.EmailStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *emailQueueRepo) Update(ctx context.Context, item *model.EmailQueueItem) error {
	return r.db.WithContext(ctx).
		Model(&model.EmailQueueItem{}).
		Where("email_id = ?", item.EmailID).
		Updates(map[string]interface{}{
			"status":     item.Status,
			"attempts":   item.Attempts,
			"last_error": item.LastError,
			"sent_at":    item.SentAt,
		}).Error
}

func (r *emailQueueRepo) ResetFailed(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmailQueueItem{}).
		Where("email_id = ? AND status = ?", id, model.EmailStatusFailed).
		Updates(map[string]interface{}{
			"status":     model.EmailStatusQueued,
			"attempts":   0,
			"last_error": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *emailQueueRepo) ListByStatus(ctx context.Context, status model.EmailStatus, offset, limit int) ([]model.EmailQueueItem, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.EmailQueueItem{})
	if status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.EmailQueueItem
	err := base.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
