package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activity-hours/backend/config"
	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

var (
	ErrSerialGenerationFailed = errors.New("兑换码生成失败：多次碰撞后放弃")
	ErrSerialAlreadyIssued    = errors.New("该参与者已签发过兑换码")
	ErrSerialCheckinNotFound  = errors.New("签到记录不存在")
	ErrNoRecipientAddress     = errors.New("无法确定收件邮箱")
)

const (
	// codeAlphabet 兑换码字母表：大写字母 + 数字
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// codeLength 兑换码固定长度
	codeLength = 12
	// maxCodeAttempts 生成碰撞的最大重试次数，用尽即报错而非无限循环
	maxCodeAttempts = 5
)

// serialBinding 签发时的身份绑定来源
// 确认触发：user 已解析；操作员触发：只有参与者标识；预生成：两者皆空
type serialBinding struct {
	user            *model.User
	identifierValue *string
}

// SerialService 兑换码签发与生命周期业务接口
type SerialService interface {
	// IssueForUser 确认触发签发：考勤确认解析到注册账号后调用
	IssueForUser(ctx context.Context, activityID string, user *model.User) (*model.Serial, error)
	// Generate 预生成一批未绑定的兑换码
	Generate(ctx context.Context, req *dto.GenerateSerialsRequest) (*dto.GenerateSerialsResponse, error)
	// SendToParticipant 操作员触发签发：对签到参与者签发并投递兑换码
	SendToParticipant(ctx context.Context, checkinID string) (*dto.SendSerialResponse, error)
	// SendBulk 批量签发，逐条收集结果，互不影响
	SendBulk(ctx context.Context, req *dto.SendSerialBulkRequest) (*dto.SendSerialBulkResponse, error)
	// CheckIssued 查询活动内某参与者标识是否已签发
	CheckIssued(ctx context.Context, activityID, participant string) (*dto.SerialCheckResponse, error)
}

type serialService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSerialService 创建 SerialService 实例
func NewSerialService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SerialService {
	return &serialService{cfg: cfg, repo: repo, logger: logger}
}

// generateCode 从固定字母表抽取 12 位随机码
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// issue 统一签发入口：两条触发路径共用同一套唯一性与创建逻辑
func (s *serialService) issue(ctx context.Context, activityID string, binding serialBinding) (*model.Serial, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("读取随机源失败: %w", err)
		}

		exists, err := s.repo.Serial.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		serial := &model.Serial{
			ActivityID:      activityID,
			Code:            code,
			Status:          model.SerialStatusPending,
			IdentifierValue: binding.identifierValue,
		}
		if binding.user != nil {
			serial.UserID = &binding.user.UserID
		}

		if err := s.repo.Serial.Create(ctx, serial); err != nil {
			// 查询与写入之间被并发占用，按碰撞重试
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, err
		}
		return serial, nil
	}

	s.logger.Error("兑换码生成重试耗尽", zap.String("activity_id", activityID))
	return nil, ErrSerialGenerationFailed
}

// enqueueDispatch 将兑换码邮件写入投递队列
// 所有投递统一走队列 + Worker，请求路径不做同步 SMTP 调用；
// Worker 投递成功后将兑换码推进到 sent
func (s *serialService) enqueueDispatch(ctx context.Context, serial *model.Serial, activity *model.Activity, recipient string) error {
	body := fmt.Sprintf(
		"<p>您好，</p><p>您参加的活动「%s」考勤已通过，兑换码为：</p><p><strong>%s</strong></p><p>请登录系统核销并完成活动评价，学时将在评价提交后记入。</p>",
		activity.Title, serial.Code,
	)
	item := &model.EmailQueueItem{
		Recipient:   recipient,
		Subject:     fmt.Sprintf("活动「%s」学时兑换码", activity.Title),
		Body:        body,
		Status:      model.EmailStatusQueued,
		MaxAttempts: s.cfg.Worker.MaxAttempts,
		SerialID:    &serial.SerialID,
	}
	return s.repo.EmailQueue.Enqueue(ctx, item)
}

func (s *serialService) IssueForUser(ctx context.Context, activityID string, user *model.User) (*model.Serial, error) {
	activity, err := s.repo.Activity.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	serial, err := s.issue(ctx, activityID, serialBinding{user: user})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueDispatch(ctx, serial, activity, user.Email); err != nil {
		// 入队失败不回滚签发：兑换码保持 pending，可由操作员重新发送
		s.logger.Error("兑换码邮件入队失败",
			zap.String("serial_id", serial.SerialID), zap.Error(err))
	}
	return serial, nil
}

func (s *serialService) Generate(ctx context.Context, req *dto.GenerateSerialsRequest) (*dto.GenerateSerialsResponse, error) {
	if _, err := s.repo.Activity.GetByID(ctx, req.ActivityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	codes := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		serial, err := s.issue(ctx, req.ActivityID, serialBinding{})
		if err != nil {
			return nil, err
		}
		codes = append(codes, serial.Code)
	}
	return &dto.GenerateSerialsResponse{ActivityID: req.ActivityID, Codes: codes}, nil
}

// resolveRecipient 确定操作员触发签发的收件邮箱
// 标识本身是邮箱时直接使用；否则尝试按标识解析注册账号取其邮箱
func (s *serialService) resolveRecipient(ctx context.Context, checkin *model.Checkin) (string, error) {
	if checkin.IdentifierType == model.IdentifierEmail {
		return checkin.IdentifierValue, nil
	}
	user, err := s.repo.User.FindByIdentifier(ctx, checkin.IdentifierType, checkin.IdentifierValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoRecipientAddress
		}
		return "", err
	}
	return user.Email, nil
}

func (s *serialService) SendToParticipant(ctx context.Context, checkinID string) (*dto.SendSerialResponse, error) {
	checkin, err := s.repo.Checkin.GetByID(ctx, checkinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSerialCheckinNotFound
		}
		return nil, err
	}

	// 同一活动 + 同一参与者标识只签发一次
	issued, err := s.repo.Serial.ExistsForParticipant(ctx, checkin.ActivityID, checkin.IdentifierValue)
	if err != nil {
		return nil, err
	}
	if issued {
		return nil, ErrSerialAlreadyIssued
	}

	recipient, err := s.resolveRecipient(ctx, checkin)
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.Activity.GetByID(ctx, checkin.ActivityID)
	if err != nil {
		return nil, err
	}

	serial, err := s.issue(ctx, checkin.ActivityID, serialBinding{identifierValue: &checkin.IdentifierValue})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueDispatch(ctx, serial, activity, recipient); err != nil {
		s.logger.Error("兑换码邮件入队失败",
			zap.String("serial_id", serial.SerialID), zap.Error(err))
		return nil, err
	}

	// 标记来源签到：兑换码已发出
	if err := s.repo.Checkin.MarkSerialSent(ctx, checkin.CheckinID); err != nil {
		s.logger.Error("更新签到发码标记失败",
			zap.String("checkin_id", checkin.CheckinID), zap.Error(err))
	}

	return &dto.SendSerialResponse{
		SerialID:  serial.SerialID,
		Code:      serial.Code,
		Recipient: recipient,
	}, nil
}

func (s *serialService) SendBulk(ctx context.Context, req *dto.SendSerialBulkRequest) (*dto.SendSerialBulkResponse, error) {
	resp := &dto.SendSerialBulkResponse{
		Succeeded: make([]dto.SendSerialResponse, 0, len(req.CheckinIDs)),
		Failed:    make([]dto.BulkFailure, 0),
	}
	// 逐条处理，单条失败不中断其余条目
	for _, id := range req.CheckinIDs {
		result, err := s.SendToParticipant(ctx, id)
		if err != nil {
			resp.Failed = append(resp.Failed, dto.BulkFailure{CheckinID: id, Reason: err.Error()})
			continue
		}
		resp.Succeeded = append(resp.Succeeded, *result)
	}
	return resp, nil
}

func (s *serialService) CheckIssued(ctx context.Context, activityID, participant string) (*dto.SerialCheckResponse, error) {
	if _, err := s.repo.Activity.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	serial, err := s.repo.Serial.GetForParticipant(ctx, activityID, participant)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.SerialCheckResponse{Issued: false}, nil
		}
		return nil, err
	}

	status := string(serial.Status)
	return &dto.SerialCheckResponse{Issued: true, Status: &status}, nil
}
