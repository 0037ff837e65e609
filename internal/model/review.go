package model

import "time"

// Review 活动评价表 — 对应 reviews
// 与 serial_histories 一一对应（serial_history_id 唯一约束）
type Review struct {
	ReviewID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	UserID             string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ActivityID         string    `gorm:"type:uuid;not null"                             json:"activity_id"`
	SerialID           string    `gorm:"type:uuid;not null"                             json:"serial_id"`
	SerialHistoryID    string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"serial_history_id"`
	RatingContent      int       `gorm:"not null"                                       json:"rating_content"`
	RatingOrganization int       `gorm:"not null"                                       json:"rating_organization"`
	RatingVenue        int       `gorm:"not null"                                       json:"rating_venue"`
	RatingSchedule     int       `gorm:"not null"                                       json:"rating_schedule"`
	RatingOverall      int       `gorm:"not null"                                       json:"rating_overall"`
	Suggestion         *string   `gorm:"type:text"                                      json:"suggestion,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }
