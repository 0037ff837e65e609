package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

var (
	ErrQueueItemNotFound  = errors.New("邮件队列条目不存在")
	ErrQueueItemNotFailed = errors.New("仅 failed 状态的条目可以重试")
)

// MailQueueService 邮件队列运维业务接口
type MailQueueService interface {
	List(ctx context.Context, req *dto.MailQueueListRequest) ([]dto.MailQueueItem, int64, error)
	// Retry 人工重置 failed 条目，重新进入队列并清零尝试次数
	Retry(ctx context.Context, id string) error
}

type mailQueueService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMailQueueService 创建 MailQueueService 实例
func NewMailQueueService(repo *repository.Repository, logger *zap.Logger) MailQueueService {
	return &mailQueueService{repo: repo, logger: logger}
}

func (s *mailQueueService) List(ctx context.Context, req *dto.MailQueueListRequest) ([]dto.MailQueueItem, int64, error) {
	items, total, err := s.repo.EmailQueue.ListByStatus(
		ctx, model.EmailStatus(req.Status), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询邮件队列失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.MailQueueItem, 0, len(items))
	for _, item := range items {
		view := dto.MailQueueItem{
			EmailID:   item.EmailID,
			Recipient: item.Recipient,
			Subject:   item.Subject,
			Status:    string(item.Status),
			Attempts:  item.Attempts,
			LastError: item.LastError,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		}
		if item.SentAt != nil {
			sentAt := item.SentAt.Format(time.RFC3339)
			view.SentAt = &sentAt
		}
		out = append(out, view)
	}
	return out, total, nil
}

func (s *mailQueueService) Retry(ctx context.Context, id string) error {
	affected, err := s.repo.EmailQueue.ResetFailed(ctx, id)
	if err != nil {
		s.logger.Error("重置邮件队列条目失败", zap.String("email_id", id), zap.Error(err))
		return err
	}
	if affected > 0 {
		return nil
	}

	// 条件更新未命中：区分不存在与状态不符
	if _, err := s.repo.EmailQueue.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQueueItemNotFound
		}
		return err
	}
	return ErrQueueItemNotFailed
}
