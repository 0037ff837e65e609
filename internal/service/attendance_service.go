package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

var (
	ErrCheckinNotFound  = errors.New("签到记录不存在")
	ErrAlreadyConfirmed = errors.New("该参与者考勤已确认")
)

// AttendanceService 考勤确认业务接口
type AttendanceService interface {
	Confirm(ctx context.Context, checkinID, staffID string) (*dto.ConfirmAttendanceResponse, error)
	// ConfirmBulk 批量确认：逐条独立处理，永不整体中断
	ConfirmBulk(ctx context.Context, req *dto.BulkConfirmRequest, staffID string) (*dto.BulkConfirmResponse, error)
}

type attendanceService struct {
	repo      *repository.Repository
	serialSvc SerialService
	logger    *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, serialSvc SerialService, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, serialSvc: serialSvc, logger: logger}
}

func (s *attendanceService) Confirm(ctx context.Context, checkinID, staffID string) (*dto.ConfirmAttendanceResponse, error) {
	// 1. 加载签到记录
	checkin, err := s.repo.Checkin.GetByID(ctx, checkinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckinNotFound
		}
		s.logger.Error("查询签到记录失败", zap.String("checkin_id", checkinID), zap.Error(err))
		return nil, err
	}

	// 2. 同一 (活动, 标识) 只确认一次
	exists, err := s.repo.Attendance.Exists(ctx, checkin.ActivityID, checkin.IdentifierType, checkin.IdentifierValue)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyConfirmed
	}

	// 3. 尽力解析注册账号：未注册不阻断确认
	var resolved *model.User
	user, err := s.repo.User.FindByIdentifier(ctx, checkin.IdentifierType, checkin.IdentifierValue)
	if err == nil {
		resolved = user
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("解析参与者账号失败，按未注册处理",
			zap.String("checkin_id", checkinID), zap.Error(err))
	}

	attendance := &model.Attendance{
		ActivityID:      checkin.ActivityID,
		IdentifierType:  checkin.IdentifierType,
		IdentifierValue: checkin.IdentifierValue,
		ConfirmedBy:     staffID,
	}
	if resolved != nil {
		attendance.UserID = &resolved.UserID
	}

	if err := s.repo.Attendance.Create(ctx, attendance); err != nil {
		// 并发确认的落败方撞到唯一约束
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyConfirmed
		}
		s.logger.Error("写入考勤记录失败", zap.String("checkin_id", checkinID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ConfirmAttendanceResponse{
		AttendanceID: attendance.AttendanceID,
		CheckinID:    checkin.CheckinID,
		UserResolved: resolved != nil,
	}

	// 4. 解析到账号时同步触发兑换码签发；签发失败不撤销考勤
	if resolved != nil {
		resp.UserID = &resolved.UserID
		serial, err := s.serialSvc.IssueForUser(ctx, checkin.ActivityID, resolved)
		if err != nil {
			s.logger.Error("确认触发的兑换码签发失败",
				zap.String("checkin_id", checkinID),
				zap.String("user_id", resolved.UserID),
				zap.Error(err))
		} else {
			resp.SerialIssued = true
			resp.SerialCode = &serial.Code
		}
	}

	return resp, nil
}

func (s *attendanceService) ConfirmBulk(ctx context.Context, req *dto.BulkConfirmRequest, staffID string) (*dto.BulkConfirmResponse, error) {
	resp := &dto.BulkConfirmResponse{
		Succeeded: make([]dto.ConfirmAttendanceResponse, 0, len(req.CheckinIDs)),
		Failed:    make([]dto.BulkFailure, 0),
	}
	for _, id := range req.CheckinIDs {
		result, err := s.Confirm(ctx, id, staffID)
		if err != nil {
			resp.Failed = append(resp.Failed, dto.BulkFailure{CheckinID: id, Reason: err.Error()})
			continue
		}
		resp.Succeeded = append(resp.Succeeded, *result)
	}
	return resp, nil
}
