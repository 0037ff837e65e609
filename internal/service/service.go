package service

import (
	"go.uber.org/zap"

	"activity-hours/backend/config"
	"activity-hours/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Checkin    CheckinService
	Attendance AttendanceService
	Serial     SerialService
	Redeem     RedeemService
	Review     ReviewService
	MailQueue  MailQueueService
}

// NewService 创建 Service 聚合
// 考勤确认依赖兑换码签发（解析到账号时同步触发），故 Serial 先于 Attendance 构造
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	serialSvc := NewSerialService(cfg, repo, logger)
	return &Service{
		Checkin:    NewCheckinService(repo, logger),
		Attendance: NewAttendanceService(repo, serialSvc, logger),
		Serial:     serialSvc,
		Redeem:     NewRedeemService(repo, logger),
		Review:     NewReviewService(repo, logger),
		MailQueue:  NewMailQueueService(repo, logger),
	}
}
