package dto

// MailQueueListRequest 邮件队列查询参数
type MailQueueListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=queued sent failed"`
	PaginationRequest
}

// MailQueueItem 邮件队列条目（运维视图）
type MailQueueItem struct {
	EmailID   string  `json:"email_id"`
	Recipient string  `json:"recipient"`
	Subject   string  `json:"subject"`
	Status    string  `json:"status"`
	Attempts  int     `json:"attempts"`
	LastError *string `json:"last_error,omitempty"`
	SentAt    *string `json:"sent_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}
