package dto

// CheckinRequest 公开签到请求
// POST /api/v1/checkin/:slug
type CheckinRequest struct {
	IdentifierType  string `json:"identifier_type"  binding:"required"`
	IdentifierValue string `json:"identifier_value" binding:"required"`
	DisplayName     string `json:"display_name"     binding:"required,max=100"`
	StudentCode     string `json:"student_code"     binding:"omitempty,max=20"`
}

// CheckinResponse 签到成功响应
type CheckinResponse struct {
	CheckinID  string `json:"checkin_id"`
	ActivityID string `json:"activity_id"`
	CreatedAt  string `json:"created_at"`
}

// CheckinListItem 活动签到列表项（工作人员确认界面数据源）
type CheckinListItem struct {
	CheckinID       string  `json:"checkin_id"`
	IdentifierType  string  `json:"identifier_type"`
	IdentifierValue string  `json:"identifier_value"`
	DisplayName     string  `json:"display_name"`
	StudentCode     string  `json:"student_code,omitempty"`
	SerialSent      bool    `json:"serial_sent"`
	SerialSentAt    *string `json:"serial_sent_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
