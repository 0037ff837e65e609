package model

import "time"

// EmailStatus 邮件队列状态枚举
type EmailStatus string

const (
	EmailStatusQueued EmailStatus = "queued"
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailQueueItem 邮件发送队列 — 对应 email_queue_items
// Worker 按创建时间 FIFO 消费；attempts 不会超过 max_attempts；
// failed 为终态，只有人工重置才会再次入队。
// serial_id 非空时表示该邮件承载兑换码，投递成功后兑换码转为 sent
type EmailQueueItem struct {
	EmailID     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"email_id"`
	Recipient   string      `gorm:"type:varchar(255);not null"                                json:"recipient"`
	Subject     string      `gorm:"type:varchar(255);not null"                                json:"subject"`
	Body        string      `gorm:"type:text;not null"                                        json:"body"`
	Status      EmailStatus `gorm:"type:varchar(20);not null;default:'queued';index:idx_email_queue_status_created" json:"status"`
	Attempts    int         `gorm:"not null;default:0"                                        json:"attempts"`
	MaxAttempts int         `gorm:"not null;default:3"                                        json:"max_attempts"`
	LastError   *string     `gorm:"type:text"                                                 json:"last_error,omitempty"`
	SerialID    *string     `gorm:"type:uuid"                                                 json:"serial_id,omitempty"`
	SentAt      *time.Time  `json:"sent_at,omitempty"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_email_queue_status_created" json:"created_at"`
}

// TableName 指定表名
func (EmailQueueItem) TableName() string { return "email_queue_items" }
