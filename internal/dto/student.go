package dto

// RedeemSerialRequest 学生核销兑换码请求
type RedeemSerialRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// RedeemSerialResponse 核销成功响应
// 学时此时尚未记入，需先提交活动评价
type RedeemSerialResponse struct {
	SerialHistoryID string `json:"serial_history_id"`
	ActivityID      string `json:"activity_id"`
	ActivityTitle   string `json:"activity_title"`
	HoursPending    int    `json:"hours_pending"`
}

// SubmitReviewRequest 活动评价请求（五项 1-5 评分）
type SubmitReviewRequest struct {
	SerialHistoryID    string  `json:"serial_history_id"   binding:"required,uuid"`
	RatingContent      int     `json:"rating_content"      binding:"required,min=1,max=5"`
	RatingOrganization int     `json:"rating_organization" binding:"required,min=1,max=5"`
	RatingVenue        int     `json:"rating_venue"        binding:"required,min=1,max=5"`
	RatingSchedule     int     `json:"rating_schedule"     binding:"required,min=1,max=5"`
	RatingOverall      int     `json:"rating_overall"      binding:"required,min=1,max=5"`
	Suggestion         *string `json:"suggestion"          binding:"omitempty,max=2000"`
}

// SubmitReviewResponse 评价成功响应：学时已记入
type SubmitReviewResponse struct {
	SerialHistoryID string `json:"serial_history_id"`
	HoursEarned     int    `json:"hours_earned"`
}

// HistoryItem 学生兑换记录列表项
type HistoryItem struct {
	SerialHistoryID string `json:"serial_history_id"`
	ActivityID      string `json:"activity_id"`
	ActivityTitle   string `json:"activity_title"`
	HoursEarned     int    `json:"hours_earned"`
	IsReviewed      bool   `json:"is_reviewed"`
	RedeemedAt      string `json:"redeemed_at"`
}
