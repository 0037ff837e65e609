package handler

import "activity-hours/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Checkin    *CheckinHandler
	Attendance *AttendanceHandler
	Serial     *SerialHandler
	Student    *StudentHandler
	MailQueue  *MailQueueHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Checkin:    NewCheckinHandler(svc.Checkin),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Serial:     NewSerialHandler(svc.Serial),
		Student:    NewStudentHandler(svc.Redeem, svc.Review),
		MailQueue:  NewMailQueueHandler(svc.MailQueue),
	}
}
