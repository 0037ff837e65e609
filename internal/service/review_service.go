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
	pkgerrors "activity-hours/backend/pkg/errors"
)

var (
	ErrHistoryNotFound  = errors.New("兑换记录不存在")
	ErrHistoryNotYours  = errors.New("无权操作他人的兑换记录")
	ErrAlreadyReviewed  = errors.New("该兑换记录已提交过评价")
	ErrRatingOutOfRange = errors.New("评分必须在 1-5 之间")
)

// ReviewService 评价与学时记入业务接口
type ReviewService interface {
	// Submit 提交评价并记入学时：评价写入、is_reviewed 翻转、学时记入同一事务提交
	Submit(ctx context.Context, userID string, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error)
	// ListHistory 学生查询自己的兑换记录与已记入学时
	ListHistory(ctx context.Context, userID string, page *dto.PaginationRequest) ([]dto.HistoryItem, int64, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

func validateRatings(req *dto.SubmitReviewRequest) error {
	for _, rating := range []int{
		req.RatingContent,
		req.RatingOrganization,
		req.RatingVenue,
		req.RatingSchedule,
		req.RatingOverall,
	} {
		if rating < 1 || rating > 5 {
			return ErrRatingOutOfRange
		}
	}
	return nil
}

func (s *reviewService) Submit(ctx context.Context, userID string, req *dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error) {
	// 1. 参数校验（绑定层已限制范围，Service 层再兜底）
	if err := validateRatings(req); err != nil {
		return nil, err
	}

	// 2. 兑换记录归属与状态检查
	history, err := s.repo.SerialHistory.GetByID(ctx, req.SerialHistoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		s.logger.Error("查询兑换记录失败", zap.String("serial_history_id", req.SerialHistoryID), zap.Error(err))
		return nil, err
	}
	if history.UserID != userID {
		return nil, ErrHistoryNotYours
	}
	if history.IsReviewed {
		return nil, ErrAlreadyReviewed
	}

	activity, err := s.repo.Activity.GetByID(ctx, history.ActivityID)
	if err != nil {
		s.logger.Error("查询活动失败", zap.String("activity_id", history.ActivityID), zap.Error(err))
		return nil, err
	}

	// 3. 评价写入与学时记入必须同生共死：任一失败全部回滚
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	review := &model.Review{
		UserID:             userID,
		ActivityID:         history.ActivityID,
		SerialID:           history.SerialID,
		SerialHistoryID:    history.SerialHistoryID,
		RatingContent:      req.RatingContent,
		RatingOrganization: req.RatingOrganization,
		RatingVenue:        req.RatingVenue,
		RatingSchedule:     req.RatingSchedule,
		RatingOverall:      req.RatingOverall,
		Suggestion:         req.Suggestion,
		CreatedAt:          time.Now(),
	}
	if err := txRepo.Review.Create(ctx, review); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		// serial_history_id 唯一约束：并发重复提交的落败方
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		s.logger.Error("写入评价失败", zap.String("serial_history_id", history.SerialHistoryID), zap.Error(err))
		return nil, err
	}

	// 条件更新 is_reviewed = false，恰好记入一次
	affected, err := txRepo.SerialHistory.CreditHours(ctx, history.SerialHistoryID, activity.HoursAwarded)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("记入学时失败", zap.String("serial_history_id", history.SerialHistoryID), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Warn("学时记入条件未命中，判定为并发重复评价",
			zap.String("serial_history_id", history.SerialHistoryID))
		return nil, pkgerrors.ErrOptimisticLock
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交评价事务失败", zap.Error(err))
			return nil, err
		}
	}

	return &dto.SubmitReviewResponse{
		SerialHistoryID: history.SerialHistoryID,
		HoursEarned:     activity.HoursAwarded,
	}, nil
}

func (s *reviewService) ListHistory(ctx context.Context, userID string, page *dto.PaginationRequest) ([]dto.HistoryItem, int64, error) {
	histories, total, err := s.repo.SerialHistory.ListByUser(ctx, userID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询兑换记录列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.HistoryItem, 0, len(histories))
	for _, h := range histories {
		item := dto.HistoryItem{
			SerialHistoryID: h.SerialHistoryID,
			ActivityID:      h.ActivityID,
			HoursEarned:     h.HoursEarned,
			IsReviewed:      h.IsReviewed,
			RedeemedAt:      h.RedeemedAt.Format(time.RFC3339),
		}
		if h.Activity != nil {
			item.ActivityTitle = h.Activity.Title
		}
		items = append(items, item)
	}
	return items, total, nil
}
