package model

import "time"

// Attendance 考勤表 — 对应 attendances
// (activity_id, identifier_type, identifier_value) 由数据库唯一约束保证，
// 并发确认的落败方会收到唯一冲突而非写入第二条记录
type Attendance struct {
	AttendanceID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                json:"attendance_id"`
	ActivityID      string         `gorm:"type:uuid;not null;uniqueIndex:uq_attendances_identity"        json:"activity_id"`
	IdentifierType  IdentifierType `gorm:"type:varchar(20);not null;uniqueIndex:uq_attendances_identity" json:"identifier_type"`
	IdentifierValue string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_attendances_identity" json:"identifier_value"`
	UserID          *string        `gorm:"type:uuid"                                                     json:"user_id,omitempty"`
	ConfirmedBy     string         `gorm:"type:uuid;not null"                                            json:"confirmed_by"`
	ConfirmedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"                            json:"confirmed_at"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
