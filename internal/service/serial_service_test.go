package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"activity-hours/backend/config"
	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
)

// ── 测试辅助 ──

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Worker.MaxAttempts = 3
	return cfg
}

func setupTestSerialService() (SerialService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewSerialService(testConfig(), repo, zap.NewNop())
	return svc, mocks
}

func seedActivity(mocks *mockRepos) *model.Activity {
	activity := &model.Activity{
		ActivityID:   "act-001",
		Title:        "志愿服务日",
		Slug:         "volunteer-day",
		HoursAwarded: 2,
		Status:       model.ActivityStatusOpen,
	}
	mocks.activity.activities[activity.ActivityID] = activity
	return activity
}

func seedCheckin(mocks *mockRepos, id string, t model.IdentifierType, value string) *model.Checkin {
	checkin := &model.Checkin{
		CheckinID:       id,
		ActivityID:      "act-001",
		IdentifierType:  t,
		IdentifierValue: value,
		DisplayName:     "参与者",
		DedupHash:       "hash-" + id,
	}
	mocks.checkin.checkins[id] = checkin
	return checkin
}

// ── Generate 测试 ──

func TestSerialService_Generate_Success(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)

	result, err := svc.Generate(context.Background(), &dto.GenerateSerialsRequest{
		ActivityID: "act-001",
		Count:      5,
	})
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if len(result.Codes) != 5 {
		t.Fatalf("期望生成 5 个码，实际 %d", len(result.Codes))
	}

	seen := make(map[string]bool)
	for _, code := range result.Codes {
		if len(code) != 12 {
			t.Errorf("期望码长为 12，实际 %q", code)
		}
		if seen[code] {
			t.Errorf("码 %q 重复", code)
		}
		seen[code] = true
	}

	// 预生成的码不绑定任何参与者
	for _, s := range mocks.serial.serials {
		if s.UserID != nil || s.IdentifierValue != nil {
			t.Error("预生成的码不应绑定用户或标识")
		}
		if s.Status != model.SerialStatusPending {
			t.Errorf("期望状态 pending，实际 %s", s.Status)
		}
	}
}

func TestSerialService_Generate_ActivityNotFound(t *testing.T) {
	svc, _ := setupTestSerialService()

	_, err := svc.Generate(context.Background(), &dto.GenerateSerialsRequest{
		ActivityID: "no-such",
		Count:      1,
	})
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("期望 ErrActivityNotFound，实际: %v", err)
	}
}

func TestSerialService_Generate_CollisionExhausted(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	mocks.serial.forceCodeExists = true

	_, err := svc.Generate(context.Background(), &dto.GenerateSerialsRequest{
		ActivityID: "act-001",
		Count:      1,
	})
	if !errors.Is(err, ErrSerialGenerationFailed) {
		t.Errorf("期望 ErrSerialGenerationFailed，实际: %v", err)
	}
}

// ── SendToParticipant 测试 ──

func TestSerialService_Send_EmailIdentifier(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")

	result, err := svc.SendToParticipant(context.Background(), "checkin-001")
	if err != nil {
		t.Fatalf("SendToParticipant 应成功: %v", err)
	}
	if result.Recipient != "zhang@example.com" {
		t.Errorf("期望收件人为标识邮箱，实际=%s", result.Recipient)
	}
	if len(mocks.emailQueue.items) != 1 {
		t.Fatalf("期望入队 1 封邮件，实际 %d", len(mocks.emailQueue.items))
	}
	for _, item := range mocks.emailQueue.items {
		if item.Status != model.EmailStatusQueued {
			t.Errorf("期望队列状态 queued，实际 %s", item.Status)
		}
		if item.SerialID == nil || *item.SerialID != result.SerialID {
			t.Error("队列条目应关联签发的兑换码")
		}
		if item.MaxAttempts != 3 {
			t.Errorf("期望 MaxAttempts=3，实际 %d", item.MaxAttempts)
		}
	}
	if !mocks.checkin.checkins["checkin-001"].SerialSent {
		t.Error("发码后应标记签到记录 serial_sent")
	}
}

func TestSerialService_Send_UsernameResolvedToEmail(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierUsername, "zhangsan")
	mocks.user.users["user-001"] = &model.User{
		UserID:   "user-001",
		Username: "zhangsan",
		Email:    "zhang@example.com",
	}

	result, err := svc.SendToParticipant(context.Background(), "checkin-001")
	if err != nil {
		t.Fatalf("SendToParticipant 应成功: %v", err)
	}
	if result.Recipient != "zhang@example.com" {
		t.Errorf("期望按注册账号解析收件邮箱，实际=%s", result.Recipient)
	}
}

func TestSerialService_Send_NoRecipient(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	// 学号标识且无对应注册账号：无从确定收件邮箱
	seedCheckin(mocks, "checkin-001", model.IdentifierStudentCode, "S2021001")

	_, err := svc.SendToParticipant(context.Background(), "checkin-001")
	if !errors.Is(err, ErrNoRecipientAddress) {
		t.Errorf("期望 ErrNoRecipientAddress，实际: %v", err)
	}
	if len(mocks.serial.serials) != 0 {
		t.Error("无收件邮箱时不应签发兑换码")
	}
}

func TestSerialService_Send_AlreadyIssued(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")

	if _, err := svc.SendToParticipant(context.Background(), "checkin-001"); err != nil {
		t.Fatalf("首次签发应成功: %v", err)
	}
	_, err := svc.SendToParticipant(context.Background(), "checkin-001")
	if !errors.Is(err, ErrSerialAlreadyIssued) {
		t.Errorf("期望 ErrSerialAlreadyIssued，实际: %v", err)
	}
}

func TestSerialService_Send_CheckinNotFound(t *testing.T) {
	svc, _ := setupTestSerialService()

	_, err := svc.SendToParticipant(context.Background(), "no-such-checkin")
	if !errors.Is(err, ErrSerialCheckinNotFound) {
		t.Errorf("期望 ErrSerialCheckinNotFound，实际: %v", err)
	}
}

// ── SendBulk 测试 ──

func TestSerialService_SendBulk_PartialFailure(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "a@example.com")
	seedCheckin(mocks, "checkin-002", model.IdentifierStudentCode, "S2021099")

	result, err := svc.SendBulk(context.Background(), &dto.SendSerialBulkRequest{
		CheckinIDs: []string{"checkin-001", "checkin-002", "no-such"},
	})
	if err != nil {
		t.Fatalf("SendBulk 应成功: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Errorf("期望成功 1 条，实际 %d", len(result.Succeeded))
	}
	if len(result.Failed) != 2 {
		t.Errorf("期望失败 2 条，实际 %d", len(result.Failed))
	}
}

// ── IssueForUser 测试 ──

func TestSerialService_IssueForUser(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	user := &model.User{UserID: "user-001", Email: "zhang@example.com"}

	serial, err := svc.IssueForUser(context.Background(), "act-001", user)
	if err != nil {
		t.Fatalf("IssueForUser 应成功: %v", err)
	}
	if serial.UserID == nil || *serial.UserID != "user-001" {
		t.Error("确认触发签发应绑定用户")
	}
	if len(mocks.emailQueue.items) != 1 {
		t.Errorf("期望入队 1 封邮件，实际 %d", len(mocks.emailQueue.items))
	}
}

func TestSerialService_IssueForUser_EnqueueFailureKeepsSerial(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	mocks.emailQueue.enqueueErr = errors.New("queue unavailable")
	user := &model.User{UserID: "user-001", Email: "zhang@example.com"}

	// 入队失败不回滚签发：码保持 pending 可由操作员重发
	serial, err := svc.IssueForUser(context.Background(), "act-001", user)
	if err != nil {
		t.Fatalf("入队失败不应使签发报错: %v", err)
	}
	if serial.Status != model.SerialStatusPending {
		t.Errorf("期望状态 pending，实际 %s", serial.Status)
	}
}

// ── CheckIssued 测试 ──

func TestSerialService_CheckIssued(t *testing.T) {
	svc, mocks := setupTestSerialService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")

	result, err := svc.CheckIssued(context.Background(), "act-001", "zhang@example.com")
	if err != nil {
		t.Fatalf("CheckIssued 应成功: %v", err)
	}
	if result.Issued {
		t.Error("尚未签发时期望 Issued=false")
	}

	if _, err := svc.SendToParticipant(context.Background(), "checkin-001"); err != nil {
		t.Fatalf("签发应成功: %v", err)
	}

	result, err = svc.CheckIssued(context.Background(), "act-001", "zhang@example.com")
	if err != nil {
		t.Fatalf("CheckIssued 应成功: %v", err)
	}
	if !result.Issued {
		t.Error("签发后期望 Issued=true")
	}
	if result.Status == nil || *result.Status != string(model.SerialStatusPending) {
		t.Errorf("期望附带状态 pending，实际 %v", result.Status)
	}
}
