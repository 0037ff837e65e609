package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	Exists(ctx context.Context, activityID string, t model.IdentifierType, value string) (bool, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepo) Exists(ctx context.Context, activityID string, t model.IdentifierType, value string) (bool, error) {
	var attendance model.Attendance
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND identifier_type = ? AND identifier_value = ?", activityID, t, value).
		First(&attendance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
