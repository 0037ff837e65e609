package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/service"
	"activity-hours/backend/pkg/response"
)

// AttendanceHandler 考勤确认模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Confirm 确认单条签到的考勤
// POST /api/v1/attendance/confirm
func (h *AttendanceHandler) Confirm(c *gin.Context) {
	staffID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ConfirmAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Confirm(c.Request.Context(), req.CheckinID, staffID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckinNotFound):
			response.NotFound(c, 13001, "签到记录不存在")
		case errors.Is(err, service.ErrAlreadyConfirmed):
			response.Conflict(c, 13002, "该参与者考勤已确认")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ConfirmBulk 批量确认考勤
// POST /api/v1/attendance/confirm-bulk
func (h *AttendanceHandler) ConfirmBulk(c *gin.Context) {
	staffID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BulkConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.ConfirmBulk(c.Request.Context(), &req, staffID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
