package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestAttendanceService() (AttendanceService, *mockRepos) {
	repo, mocks := newMockRepository()
	serialSvc := NewSerialService(testConfig(), repo, zap.NewNop())
	svc := NewAttendanceService(repo, serialSvc, zap.NewNop())
	return svc, mocks
}

// ── Confirm 测试 ──

func TestAttendanceService_Confirm_RegisteredUser(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")
	mocks.user.users["user-001"] = &model.User{
		UserID: "user-001",
		Email:  "zhang@example.com",
	}

	result, err := svc.Confirm(context.Background(), "checkin-001", "staff-001")
	if err != nil {
		t.Fatalf("Confirm 应成功: %v", err)
	}
	if !result.UserResolved {
		t.Error("期望解析到注册账号")
	}
	if !result.SerialIssued || result.SerialCode == nil {
		t.Error("解析到账号时应同步签发兑换码")
	}
	if len(mocks.emailQueue.items) != 1 {
		t.Errorf("期望兑换码邮件入队 1 封，实际 %d", len(mocks.emailQueue.items))
	}

	// 考勤记录应绑定解析到的用户
	for _, a := range mocks.attendance.attendances {
		if a.UserID == nil || *a.UserID != "user-001" {
			t.Error("考勤记录应绑定 user-001")
		}
		if a.ConfirmedBy != "staff-001" {
			t.Errorf("期望 ConfirmedBy=staff-001，实际=%s", a.ConfirmedBy)
		}
	}
}

func TestAttendanceService_Confirm_UnregisteredParticipant(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "guest@example.com")

	// 未注册参与者：确认照常完成，但不签发兑换码
	result, err := svc.Confirm(context.Background(), "checkin-001", "staff-001")
	if err != nil {
		t.Fatalf("未注册参与者 Confirm 应成功: %v", err)
	}
	if result.UserResolved {
		t.Error("未注册时期望 UserResolved=false")
	}
	if result.SerialIssued {
		t.Error("未注册时不应签发兑换码")
	}
	if len(mocks.serial.serials) != 0 {
		t.Error("未注册时不应创建兑换码")
	}
}

func TestAttendanceService_Confirm_CheckinNotFound(t *testing.T) {
	svc, _ := setupTestAttendanceService()

	_, err := svc.Confirm(context.Background(), "no-such", "staff-001")
	if !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("期望 ErrCheckinNotFound，实际: %v", err)
	}
}

func TestAttendanceService_Confirm_AlreadyConfirmed(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")

	if _, err := svc.Confirm(context.Background(), "checkin-001", "staff-001"); err != nil {
		t.Fatalf("首次 Confirm 应成功: %v", err)
	}
	_, err := svc.Confirm(context.Background(), "checkin-001", "staff-002")
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("期望 ErrAlreadyConfirmed，实际: %v", err)
	}
	if len(mocks.attendance.attendances) != 1 {
		t.Errorf("期望仅 1 条考勤记录，实际 %d", len(mocks.attendance.attendances))
	}
}

func TestAttendanceService_Confirm_SerialFailureDoesNotRevert(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "zhang@example.com")
	mocks.user.users["user-001"] = &model.User{
		UserID: "user-001",
		Email:  "zhang@example.com",
	}
	mocks.serial.forceCodeExists = true

	// 兑换码签发失败不撤销已写入的考勤
	result, err := svc.Confirm(context.Background(), "checkin-001", "staff-001")
	if err != nil {
		t.Fatalf("签发失败不应使 Confirm 报错: %v", err)
	}
	if result.SerialIssued {
		t.Error("签发失败时期望 SerialIssued=false")
	}
	if len(mocks.attendance.attendances) != 1 {
		t.Error("考勤记录应保留")
	}
}

// ── ConfirmBulk 测试 ──

func TestAttendanceService_ConfirmBulk_PartialFailure(t *testing.T) {
	svc, mocks := setupTestAttendanceService()
	seedActivity(mocks)
	seedCheckin(mocks, "checkin-001", model.IdentifierEmail, "a@example.com")
	seedCheckin(mocks, "checkin-002", model.IdentifierEmail, "b@example.com")

	result, err := svc.ConfirmBulk(context.Background(), &dto.BulkConfirmRequest{
		CheckinIDs: []string{"checkin-001", "no-such", "checkin-002"},
	}, "staff-001")
	if err != nil {
		t.Fatalf("ConfirmBulk 应成功: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("期望成功 2 条，实际 %d", len(result.Succeeded))
	}
	if len(result.Failed) != 1 {
		t.Errorf("期望失败 1 条，实际 %d", len(result.Failed))
	}
	if len(result.Failed) == 1 && result.Failed[0].CheckinID != "no-such" {
		t.Errorf("失败条目应为 no-such，实际=%s", result.Failed[0].CheckinID)
	}
}
