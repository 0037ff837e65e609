package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

var (
	ErrActivityNotFound = errors.New("活动不存在")
	ErrActivityClosed   = errors.New("活动已结束签到")
	ErrDuplicateCheckin = errors.New("该标识已签到，请勿重复提交")
)

// CheckinService 签到业务接口
type CheckinService interface {
	Submit(ctx context.Context, slug string, req *dto.CheckinRequest) (*dto.CheckinResponse, error)
	ListByActivity(ctx context.Context, activityID string, page *dto.PaginationRequest) ([]dto.CheckinListItem, int64, error)
}

type checkinService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(repo *repository.Repository, logger *zap.Logger) CheckinService {
	return &checkinService{repo: repo, logger: logger}
}

// dedupHash 计算签到去重哈希：sha256(activity_id | 归一化标识)。
// 标识类型不参与哈希：同一归一化取值换个类型提交也视为重复
func dedupHash(activityID, normalized string) string {
	sum := sha256.Sum256([]byte(activityID + "|" + normalized))
	return hex.EncodeToString(sum[:])
}

func (s *checkinService) Submit(ctx context.Context, slug string, req *dto.CheckinRequest) (*dto.CheckinResponse, error) {
	// 1. 校验标识类型与归一化（任何查库之前完成）
	idType, err := model.ParseIdentifierType(req.IdentifierType)
	if err != nil {
		return nil, err
	}
	normalized, err := idType.Normalize(req.IdentifierValue)
	if err != nil {
		return nil, err
	}
	if normalized == "" {
		return nil, fmt.Errorf("%w: 标识取值为空", model.ErrInvalidIdentifierType)
	}

	// 2. 活动门控：仅 open 状态的活动接受签到
	activity, err := s.repo.Activity.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	switch activity.Status {
	case model.ActivityStatusOpen:
		// 放行
	case model.ActivityStatusClosed:
		return nil, ErrActivityClosed
	default:
		// draft 活动对外不可见
		return nil, ErrActivityNotFound
	}

	// 3. 去重：同一活动 + 同一归一化标识只允许一条签到
	hash := dedupHash(activity.ActivityID, normalized)
	if _, err := s.repo.Checkin.GetByDedupHash(ctx, hash); err == nil {
		return nil, ErrDuplicateCheckin
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询签到去重哈希失败", zap.Error(err))
		return nil, err
	}

	checkin := &model.Checkin{
		ActivityID:      activity.ActivityID,
		IdentifierType:  idType,
		IdentifierValue: normalized,
		DisplayName:     req.DisplayName,
		StudentCode:     req.StudentCode,
		DedupHash:       hash,
	}
	if err := s.repo.Checkin.Create(ctx, checkin); err != nil {
		// 并发提交的落败方撞到唯一约束，与先查到重复同样处理
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCheckin
		}
		s.logger.Error("写入签到记录失败", zap.Error(err))
		return nil, err
	}

	return &dto.CheckinResponse{
		CheckinID:  checkin.CheckinID,
		ActivityID: checkin.ActivityID,
		CreatedAt:  checkin.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *checkinService) ListByActivity(ctx context.Context, activityID string, page *dto.PaginationRequest) ([]dto.CheckinListItem, int64, error) {
	if _, err := s.repo.Activity.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrActivityNotFound
		}
		return nil, 0, err
	}

	checkins, total, err := s.repo.Checkin.ListByActivity(ctx, activityID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询活动签到列表失败", zap.String("activity_id", activityID), zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.CheckinListItem, 0, len(checkins))
	for _, c := range checkins {
		item := dto.CheckinListItem{
			CheckinID:       c.CheckinID,
			IdentifierType:  string(c.IdentifierType),
			IdentifierValue: c.IdentifierValue,
			DisplayName:     c.DisplayName,
			StudentCode:     c.StudentCode,
			SerialSent:      c.SerialSent,
			CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		}
		if c.SerialSentAt != nil {
			sentAt := c.SerialSentAt.Format(time.RFC3339)
			item.SerialSentAt = &sentAt
		}
		items = append(items, item)
	}
	return items, total, nil
}
