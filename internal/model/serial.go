package model

import "time"

// SerialStatus 兑换码状态枚举
// 状态只沿 pending → sent → redeemed 推进，redeemed 为终态
type SerialStatus string

const (
	SerialStatusPending  SerialStatus = "pending"
	SerialStatusSent     SerialStatus = "sent"
	SerialStatusRedeemed SerialStatus = "redeemed"
)

// Serial 兑换码表 — 对应 serials
// user_id 在确认触发签发时即已绑定；操作员触发签发只记 identifier_value，
// user_id 留空直至核销时绑定
type Serial struct {
	SerialID        string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"serial_id"`
	ActivityID      string       `gorm:"type:uuid;not null"                             json:"activity_id"`
	Code            string       `gorm:"type:varchar(12);not null;uniqueIndex"          json:"code"`
	Status          SerialStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	UserID          *string      `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	IdentifierValue *string      `gorm:"type:varchar(255)"                              json:"identifier_value,omitempty"`
	SentAt          *time.Time   `json:"sent_at,omitempty"`
	RedeemedAt      *time.Time   `json:"redeemed_at,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"activity,omitempty"`
}

// TableName 指定表名
func (Serial) TableName() string { return "serials" }
