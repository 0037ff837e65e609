package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/service"
	"activity-hours/backend/pkg/response"
)

// CheckinHandler 签到模块 HTTP 处理器
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler 创建 CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// Submit 公开签到（无需登录，按 IP 限流）
// POST /api/v1/checkin/:slug
func (h *CheckinHandler) Submit(c *gin.Context) {
	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.checkinSvc.Submit(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidIdentifierType):
			response.BadRequest(c, 12001, "参与者标识无效")
		case errors.Is(err, service.ErrActivityNotFound):
			response.NotFound(c, 12002, "活动不存在")
		case errors.Is(err, service.ErrActivityClosed):
			response.Conflict(c, 12003, "活动已结束签到")
		case errors.Is(err, service.ErrDuplicateCheckin):
			response.Conflict(c, 12004, "该标识已签到，请勿重复提交")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListByActivity 活动签到列表（工作人员确认界面）
// GET /api/v1/activities/:id/checkins
func (h *CheckinHandler) ListByActivity(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.checkinSvc.ListByActivity(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			response.NotFound(c, 12002, "活动不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}
