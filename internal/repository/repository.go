package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Activity      ActivityRepository
	User          UserRepository
	Checkin       CheckinRepository
	Attendance    AttendanceRepository
	Serial        SerialRepository
	SerialHistory SerialHistoryRepository
	Review        ReviewRepository
	EmailQueue    EmailQueueRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Activity:      NewActivityRepo(db),
		User:          NewUserRepo(db),
		Checkin:       NewCheckinRepo(db),
		Attendance:    NewAttendanceRepo(db),
		Serial:        NewSerialRepo(db),
		SerialHistory: NewSerialHistoryRepo(db),
		Review:        NewReviewRepo(db),
		EmailQueue:    NewEmailQueueRepo(db),
	}
}

// BeginTx 开启事务
// db 为空时（单元测试中的 mock 聚合）返回 nil 事务，调用方按 tx != nil 判断提交/回滚
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 聚合
// tx 为 nil 时返回自身（配合 BeginTx 的 mock 约定）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
