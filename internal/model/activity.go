package model

import "time"

// ActivityStatus 活动状态枚举
type ActivityStatus string

const (
	ActivityStatusDraft  ActivityStatus = "draft"
	ActivityStatusOpen   ActivityStatus = "open"
	ActivityStatusClosed ActivityStatus = "closed"
)

// Activity 活动表 — 对应 activities
// 由活动管理服务维护，本服务只读（签到入口按 status 门控）
type Activity struct {
	ActivityID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	Title        string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Slug         string         `gorm:"type:varchar(100);not null;uniqueIndex"         json:"slug"`
	StartTime    time.Time      `gorm:"not null"                                       json:"start_time"`
	EndTime      time.Time      `gorm:"not null"                                       json:"end_time"`
	HoursAwarded int            `gorm:"not null;default:0"                             json:"hours_awarded"`
	Status       ActivityStatus `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	BaseModel
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }
