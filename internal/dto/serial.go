package dto

// GenerateSerialsRequest 预生成兑换码请求（不绑定任何参与者）
type GenerateSerialsRequest struct {
	ActivityID string `json:"activity_id" binding:"required,uuid"`
	Count      int    `json:"count"       binding:"required,min=1,max=500"`
}

// GenerateSerialsResponse 预生成兑换码响应
type GenerateSerialsResponse struct {
	ActivityID string   `json:"activity_id"`
	Codes      []string `json:"codes"`
}

// SendSerialRequest 对单个签到参与者签发并发送兑换码
type SendSerialRequest struct {
	CheckinID string `json:"checkin_id" binding:"required,uuid"`
}

// SendSerialResponse 签发结果
// 邮件经由队列异步投递，此处只表示已入队
type SendSerialResponse struct {
	SerialID  string `json:"serial_id"`
	Code      string `json:"code"`
	Recipient string `json:"recipient"`
}

// SendSerialBulkRequest 批量签发请求
type SendSerialBulkRequest struct {
	CheckinIDs []string `json:"checkin_ids" binding:"required,min=1,max=200,dive,uuid"`
}

// SendSerialBulkResponse 批量签发响应：逐条结果互不影响
type SendSerialBulkResponse struct {
	Succeeded []SendSerialResponse `json:"succeeded"`
	Failed    []BulkFailure        `json:"failed"`
}

// SerialCheckResponse 查询某参与者是否已签发兑换码
type SerialCheckResponse struct {
	Issued bool    `json:"issued"`
	Status *string `json:"status,omitempty"`
}
