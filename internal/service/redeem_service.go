package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

var (
	ErrSerialNotFound       = errors.New("兑换码不存在")
	ErrSerialRedeemed       = errors.New("兑换码已被核销")
	ErrAlreadyRedeemedByYou = errors.New("您已核销过该兑换码")
	ErrSerialBoundToOther   = errors.New("该兑换码已绑定其他账号")
)

// RedeemService 兑换码核销业务接口
type RedeemService interface {
	Redeem(ctx context.Context, userID string, req *dto.RedeemSerialRequest) (*dto.RedeemSerialResponse, error)
}

type redeemService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRedeemService 创建 RedeemService 实例
func NewRedeemService(repo *repository.Repository, logger *zap.Logger) RedeemService {
	return &redeemService{repo: repo, logger: logger}
}

// Redeem 核销兑换码
// 守卫链在行锁事务内逐条评估，首个失败即返回；并发核销同一个码的请求
// 在 FOR UPDATE 处串行化，落败方在自己的守卫链里收到对应的冲突错误，
// 不存在两个请求都通过检查的窗口
func (s *redeemService) Redeem(ctx context.Context, userID string, req *dto.RedeemSerialRequest) (*dto.RedeemSerialResponse, error) {
	// 兑换码不区分大小写，统一按大写处理
	code := strings.ToUpper(strings.TrimSpace(req.Code))

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

	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	// 守卫 1：兑换码存在（行锁查询，并发请求在此串行化）
	serial, err := txRepo.Serial.GetByCodeForUpdate(ctx, code)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSerialNotFound
		}
		s.logger.Error("查询兑换码失败", zap.Error(err))
		return nil, err
	}

	// 守卫 2：状态必须尚未进入终态
	if serial.Status == model.SerialStatusRedeemed {
		rollback()
		return nil, ErrSerialRedeemed
	}

	// 守卫 3：同一用户不能重复核销同一个码
	redeemed, err := txRepo.SerialHistory.ExistsForUserSerial(ctx, userID, serial.SerialID)
	if err != nil {
		rollback()
		return nil, err
	}
	if redeemed {
		rollback()
		return nil, ErrAlreadyRedeemedByYou
	}

	// 守卫 4：已绑定他人的码不可核销，且不改动任何状态
	if serial.UserID != nil && *serial.UserID != userID {
		rollback()
		return nil, ErrSerialBoundToOther
	}

	// 核销：状态翻转与兑换记录写入同一事务提交。
	// 条件更新未命中说明该码在守卫链之后已被并发核销，按已核销处理
	affected, err := txRepo.Serial.MarkRedeemed(ctx, serial.SerialID, userID)
	if err != nil {
		rollback()
		s.logger.Error("更新兑换码状态失败", zap.String("serial_id", serial.SerialID), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		rollback()
		s.logger.Warn("兑换码核销条件未命中，判定为并发核销冲突", zap.String("serial_id", serial.SerialID))
		return nil, ErrSerialRedeemed
	}

	history := &model.SerialHistory{
		UserID:     userID,
		SerialID:   serial.SerialID,
		ActivityID: serial.ActivityID,
		// 学时在评价提交前保持为 0
		HoursEarned: 0,
		IsReviewed:  false,
	}
	if err := txRepo.SerialHistory.Create(ctx, history); err != nil {
		rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRedeemedByYou
		}
		s.logger.Error("写入兑换记录失败", zap.String("serial_id", serial.SerialID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交核销事务失败", zap.Error(err))
			return nil, err
		}
	}

	activity, err := s.repo.Activity.GetByID(ctx, serial.ActivityID)
	if err != nil {
		// 核销已提交成功，活动标题查询失败只降级响应内容
		s.logger.Warn("查询活动信息失败", zap.String("activity_id", serial.ActivityID), zap.Error(err))
		return &dto.RedeemSerialResponse{
			SerialHistoryID: history.SerialHistoryID,
			ActivityID:      serial.ActivityID,
		}, nil
	}

	return &dto.RedeemSerialResponse{
		SerialHistoryID: history.SerialHistoryID,
		ActivityID:      activity.ActivityID,
		ActivityTitle:   activity.Title,
		HoursPending:    activity.HoursAwarded,
	}, nil
}
