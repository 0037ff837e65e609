package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) GetBySlug(_ context.Context, slug string) (*model.Activity, error) {
	for _, a := range m.activities {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByIdentifier(_ context.Context, t model.IdentifierType, value string) (*model.User, error) {
	for _, u := range m.users {
		switch t {
		case model.IdentifierEmail:
			if u.Email == value {
				return u, nil
			}
		case model.IdentifierUsername:
			if u.Username == value {
				return u, nil
			}
		case model.IdentifierStudentCode:
			if u.StudentCode == value {
				return u, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CheckinRepository ──

type mockCheckinRepo struct {
	checkins map[string]*model.Checkin
	seq      int
}

func newMockCheckinRepo() *mockCheckinRepo {
	return &mockCheckinRepo{checkins: make(map[string]*model.Checkin)}
}

func (m *mockCheckinRepo) Create(_ context.Context, checkin *model.Checkin) error {
	for _, c := range m.checkins {
		if c.DedupHash == checkin.DedupHash {
			return gorm.ErrDuplicatedKey
		}
	}
	if checkin.CheckinID == "" {
		m.seq++
		checkin.CheckinID = fmt.Sprintf("checkin-%03d", m.seq)
	}
	if checkin.CreatedAt.IsZero() {
		checkin.CreatedAt = time.Now()
	}
	m.checkins[checkin.CheckinID] = checkin
	return nil
}

func (m *mockCheckinRepo) GetByID(_ context.Context, id string) (*model.Checkin, error) {
	if c, ok := m.checkins[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) GetByDedupHash(_ context.Context, hash string) (*model.Checkin, error) {
	for _, c := range m.checkins {
		if c.DedupHash == hash {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) ListByActivity(_ context.Context, activityID string, offset, limit int) ([]model.Checkin, int64, error) {
	var result []model.Checkin
	for _, c := range m.checkins {
		if c.ActivityID == activityID {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockCheckinRepo) MarkSerialSent(_ context.Context, checkinID string) error {
	if c, ok := m.checkins[checkinID]; ok {
		now := time.Now()
		c.SerialSent = true
		c.SerialSentAt = &now
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	attendances map[string]*model.Attendance // key: activity|type|value
	seq         int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{attendances: make(map[string]*model.Attendance)}
}

func attendanceKey(activityID string, t model.IdentifierType, value string) string {
	return activityID + "|" + string(t) + "|" + value
}

func (m *mockAttendanceRepo) Create(_ context.Context, attendance *model.Attendance) error {
	key := attendanceKey(attendance.ActivityID, attendance.IdentifierType, attendance.IdentifierValue)
	if _, ok := m.attendances[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if attendance.AttendanceID == "" {
		m.seq++
		attendance.AttendanceID = fmt.Sprintf("att-%03d", m.seq)
	}
	m.attendances[key] = attendance
	return nil
}

func (m *mockAttendanceRepo) Exists(_ context.Context, activityID string, t model.IdentifierType, value string) (bool, error) {
	_, ok := m.attendances[attendanceKey(activityID, t, value)]
	return ok, nil
}

// ── Mock SerialRepository ──

type mockSerialRepo struct {
	serials map[string]*model.Serial
	seq     int

	// forceCodeExists 使所有生成的码都视为已占用，驱动碰撞重试耗尽
	forceCodeExists bool

	// forceRedeemConflict 使 MarkRedeemed 条件更新未命中，
	// 模拟守卫链之后被并发核销抢先的场景
	forceRedeemConflict bool
}

func newMockSerialRepo() *mockSerialRepo {
	return &mockSerialRepo{serials: make(map[string]*model.Serial)}
}

func (m *mockSerialRepo) Create(_ context.Context, serial *model.Serial) error {
	for _, s := range m.serials {
		if s.Code == serial.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if serial.SerialID == "" {
		m.seq++
		serial.SerialID = fmt.Sprintf("serial-%03d", m.seq)
	}
	if serial.CreatedAt.IsZero() {
		serial.CreatedAt = time.Now()
	}
	m.serials[serial.SerialID] = serial
	return nil
}

func (m *mockSerialRepo) GetByCode(_ context.Context, code string) (*model.Serial, error) {
	for _, s := range m.serials {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSerialRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.Serial, error) {
	return m.GetByCode(ctx, code)
}

func (m *mockSerialRepo) CodeExists(_ context.Context, code string) (bool, error) {
	if m.forceCodeExists {
		return true, nil
	}
	for _, s := range m.serials {
		if s.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSerialRepo) ExistsForParticipant(_ context.Context, activityID, identifierValue string) (bool, error) {
	for _, s := range m.serials {
		if s.ActivityID == activityID && s.IdentifierValue != nil && *s.IdentifierValue == identifierValue {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSerialRepo) GetForParticipant(_ context.Context, activityID, identifierValue string) (*model.Serial, error) {
	for _, s := range m.serials {
		if s.ActivityID == activityID && s.IdentifierValue != nil && *s.IdentifierValue == identifierValue {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSerialRepo) MarkSent(_ context.Context, serialID string) error {
	if s, ok := m.serials[serialID]; ok && s.Status == model.SerialStatusPending {
		now := time.Now()
		s.Status = model.SerialStatusSent
		s.SentAt = &now
	}
	return nil
}

func (m *mockSerialRepo) MarkRedeemed(_ context.Context, serialID, userID string) (int64, error) {
	if m.forceRedeemConflict {
		return 0, nil
	}
	s, ok := m.serials[serialID]
	if !ok || s.Status == model.SerialStatusRedeemed {
		return 0, nil
	}
	now := time.Now()
	s.Status = model.SerialStatusRedeemed
	s.UserID = &userID
	s.RedeemedAt = &now
	return 1, nil
}

// ── Mock SerialHistoryRepository ──

type mockSerialHistoryRepo struct {
	histories map[string]*model.SerialHistory
	seq       int
}

func newMockSerialHistoryRepo() *mockSerialHistoryRepo {
	return &mockSerialHistoryRepo{histories: make(map[string]*model.SerialHistory)}
}

func (m *mockSerialHistoryRepo) Create(_ context.Context, history *model.SerialHistory) error {
	for _, h := range m.histories {
		if h.UserID == history.UserID && h.SerialID == history.SerialID {
			return gorm.ErrDuplicatedKey
		}
	}
	if history.SerialHistoryID == "" {
		m.seq++
		history.SerialHistoryID = fmt.Sprintf("history-%03d", m.seq)
	}
	if history.RedeemedAt.IsZero() {
		history.RedeemedAt = time.Now()
	}
	m.histories[history.SerialHistoryID] = history
	return nil
}

func (m *mockSerialHistoryRepo) GetByID(_ context.Context, id string) (*model.SerialHistory, error) {
	if h, ok := m.histories[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSerialHistoryRepo) ExistsForUserSerial(_ context.Context, userID, serialID string) (bool, error) {
	for _, h := range m.histories {
		if h.UserID == userID && h.SerialID == serialID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSerialHistoryRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.SerialHistory, int64, error) {
	var result []model.SerialHistory
	for _, h := range m.histories {
		if h.UserID == userID {
			result = append(result, *h)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockSerialHistoryRepo) CreditHours(_ context.Context, historyID string, hours int) (int64, error) {
	h, ok := m.histories[historyID]
	if !ok || h.IsReviewed {
		return 0, nil
	}
	h.IsReviewed = true
	h.HoursEarned = hours
	return 1, nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct {
	reviews map[string]*model.Review // key: serial_history_id
	seq     int
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]*model.Review)}
}

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	if _, ok := m.reviews[review.SerialHistoryID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if review.ReviewID == "" {
		m.seq++
		review.ReviewID = fmt.Sprintf("review-%03d", m.seq)
	}
	m.reviews[review.SerialHistoryID] = review
	return nil
}

// ── Mock EmailQueueRepository ──

type mockEmailQueueRepo struct {
	items map[string]*model.EmailQueueItem
	seq   int

	enqueueErr error
}

func newMockEmailQueueRepo() *mockEmailQueueRepo {
	return &mockEmailQueueRepo{items: make(map[string]*model.EmailQueueItem)}
}

func (m *mockEmailQueueRepo) Enqueue(_ context.Context, item *model.EmailQueueItem) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	if item.EmailID == "" {
		m.seq++
		item.EmailID = fmt.Sprintf("email-%03d", m.seq)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	m.items[item.EmailID] = item
	return nil
}

func (m *mockEmailQueueRepo) GetByID(_ context.Context, id string) (*model.EmailQueueItem, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmailQueueRepo) NextBatch(_ context.Context, limit int) ([]model.EmailQueueItem, error) {
	var result []model.EmailQueueItem
	for _, item := range m.items {
		if item.Status == model.EmailStatusQueued {
			result = append(result, *item)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockEmailQueueRepo) Update(_ context.Context, item *model.EmailQueueItem) error {
	if stored, ok := m.items[item.EmailID]; ok {
		stored.Status = item.Status
		stored.Attempts = item.Attempts
		stored.LastError = item.LastError
		stored.SentAt = item.SentAt
	}
	return nil
}

func (m *mockEmailQueueRepo) ResetFailed(_ context.Context, id string) (int64, error) {
	item, ok := m.items[id]
	if !ok || item.Status != model.EmailStatusFailed {
		return 0, nil
	}
	item.Status = model.EmailStatusQueued
	item.Attempts = 0
	item.LastError = nil
	return 1, nil
}

func (m *mockEmailQueueRepo) ListByStatus(_ context.Context, status model.EmailStatus, offset, limit int) ([]model.EmailQueueItem, int64, error) {
	var result []model.EmailQueueItem
	for _, item := range m.items {
		if status == "" || item.Status == status {
			result = append(result, *item)
		}
	}
	return result, int64(len(result)), nil
}

// ── 聚合辅助 ──

// mockRepos 聚合各 mock 实例，便于测试中直接操作底层数据
type mockRepos struct {
	activity      *mockActivityRepo
	user          *mockUserRepo
	checkin       *mockCheckinRepo
	attendance    *mockAttendanceRepo
	serial        *mockSerialRepo
	serialHistory *mockSerialHistoryRepo
	review        *mockReviewRepo
	emailQueue    *mockEmailQueueRepo
}

// newMockRepository 构建 db 为空的 Repository 聚合
// BeginTx 返回 nil 事务，Service 层按 tx != nil 判断，无需真实数据库
func newMockRepository() (*repository.Repository, *mockRepos) {
	mocks := &mockRepos{
		activity:      newMockActivityRepo(),
		user:          newMockUserRepo(),
		checkin:       newMockCheckinRepo(),
		attendance:    newMockAttendanceRepo(),
		serial:        newMockSerialRepo(),
		serialHistory: newMockSerialHistoryRepo(),
		review:        newMockReviewRepo(),
		emailQueue:    newMockEmailQueueRepo(),
	}
	repo := &repository.Repository{
		Activity:      mocks.activity,
		User:          mocks.user,
		Checkin:       mocks.checkin,
		Attendance:    mocks.attendance,
		Serial:        mocks.serial,
		SerialHistory: mocks.serialHistory,
		Review:        mocks.review,
		EmailQueue:    mocks.emailQueue,
	}
	return repo, mocks
}
