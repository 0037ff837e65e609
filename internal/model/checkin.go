package model

import "time"

// Checkin 签到表 — 对应 checkins
// dedup_hash 由 (activity_id, 标识类型, 归一化标识) 派生并全局唯一；
// 记录一经创建不再修改，仅 serial_sent 标记在兑换码发出后翻转
type Checkin struct {
	CheckinID       string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"checkin_id"`
	ActivityID      string         `gorm:"type:uuid;not null;index:idx_checkins_activity" json:"activity_id"`
	IdentifierType  IdentifierType `gorm:"type:varchar(20);not null"                      json:"identifier_type"`
	IdentifierValue string         `gorm:"type:varchar(255);not null"                     json:"identifier_value"`
	DisplayName     string         `gorm:"type:varchar(100);not null"                     json:"display_name"`
	StudentCode     string         `gorm:"type:varchar(20);not null;default:''"           json:"student_code"`
	DedupHash       string         `gorm:"type:char(64);not null;uniqueIndex"             json:"-"`
	SerialSent      bool           `gorm:"not null;default:false"                         json:"serial_sent"`
	SerialSentAt    *time.Time     `json:"serial_sent_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"activity,omitempty"`
}

// TableName 指定表名
func (Checkin) TableName() string { return "checkins" }
