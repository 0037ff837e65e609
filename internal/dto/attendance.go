package dto

// ConfirmAttendanceRequest 考勤确认请求（单条）
type ConfirmAttendanceRequest struct {
	CheckinID string `json:"checkin_id" binding:"required,uuid"`
}

// ConfirmAttendanceResponse 考勤确认响应
// 报告是否解析到注册账号、是否触发了兑换码签发
type ConfirmAttendanceResponse struct {
	AttendanceID string  `json:"attendance_id"`
	CheckinID    string  `json:"checkin_id"`
	UserResolved bool    `json:"user_resolved"`
	UserID       *string `json:"user_id,omitempty"`
	SerialIssued bool    `json:"serial_issued"`
	SerialCode   *string `json:"serial_code,omitempty"`
}

// BulkConfirmRequest 考勤确认请求（批量）
type BulkConfirmRequest struct {
	CheckinIDs []string `json:"checkin_ids" binding:"required,min=1,max=200,dive,uuid"`
}

// BulkFailure 批量操作中单条失败的原因
type BulkFailure struct {
	CheckinID string `json:"checkin_id"`
	Reason    string `json:"reason"`
}

// BulkConfirmResponse 批量确认响应：逐条结果互不影响
type BulkConfirmResponse struct {
	Succeeded []ConfirmAttendanceResponse `json:"succeeded"`
	Failed    []BulkFailure               `json:"failed"`
}
