package model

import "time"

// SerialHistory 兑换记录表 — 对应 serial_histories
// 每次成功核销恰好创建一条；hours_earned 在 is_reviewed 翻转前恒为 0，
// 评价提交时原子性地写入 activity.hours_awarded
type SerialHistory struct {
	SerialHistoryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                  json:"serial_history_id"`
	UserID          string    `gorm:"type:uuid;not null;uniqueIndex:uq_serial_histories_user_serial"  json:"user_id"`
	SerialID        string    `gorm:"type:uuid;not null;uniqueIndex:uq_serial_histories_user_serial"  json:"serial_id"`
	ActivityID      string    `gorm:"type:uuid;not null"                                              json:"activity_id"`
	HoursEarned     int       `gorm:"not null;default:0"                                              json:"hours_earned"`
	IsReviewed      bool      `gorm:"not null;default:false"                                          json:"is_reviewed"`
	RedeemedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                              json:"redeemed_at"`

	// 关联
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"activity,omitempty"`
	Serial   *Serial   `gorm:"foreignKey:SerialID;references:SerialID"     json:"serial,omitempty"`
}

// TableName 指定表名
func (SerialHistory) TableName() string { return "serial_histories" }
