package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/service"
	"activity-hours/backend/pkg/response"
)

// MailQueueHandler 邮件队列运维 HTTP 处理器（管理员）
type MailQueueHandler struct {
	mailQueueSvc service.MailQueueService
}

// NewMailQueueHandler 创建 MailQueueHandler
func NewMailQueueHandler(mailQueueSvc service.MailQueueService) *MailQueueHandler {
	return &MailQueueHandler{mailQueueSvc: mailQueueSvc}
}

// List 查询邮件队列
// GET /api/v1/mail-queue
func (h *MailQueueHandler) List(c *gin.Context) {
	var req dto.MailQueueListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.mailQueueSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Retry 重置 failed 条目重新入队
// POST /api/v1/mail-queue/:id/retry
func (h *MailQueueHandler) Retry(c *gin.Context) {
	if err := h.mailQueueSvc.Retry(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrQueueItemNotFound):
			response.NotFound(c, 16001, "邮件队列条目不存在")
		case errors.Is(err, service.ErrQueueItemNotFailed):
			response.Conflict(c, 16002, "仅 failed 状态的条目可以重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
