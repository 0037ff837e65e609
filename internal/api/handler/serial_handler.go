package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/service"
	"activity-hours/backend/pkg/response"
)

// SerialHandler 兑换码模块 HTTP 处理器
type SerialHandler struct {
	serialSvc service.SerialService
}

// NewSerialHandler 创建 SerialHandler
func NewSerialHandler(serialSvc service.SerialService) *SerialHandler {
	return &SerialHandler{serialSvc: serialSvc}
}

// Generate 预生成一批未绑定的兑换码（管理员）
// POST /api/v1/serials/generate
func (h *SerialHandler) Generate(c *gin.Context) {
	var req dto.GenerateSerialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.serialSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			response.NotFound(c, 12002, "活动不存在")
		case errors.Is(err, service.ErrSerialGenerationFailed):
			response.Error(c, http.StatusInternalServerError, 14001, "兑换码生成失败，请重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// Send 对单个签到参与者签发并发送兑换码
// POST /api/v1/serials/send
func (h *SerialHandler) Send(c *gin.Context) {
	var req dto.SendSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.serialSvc.SendToParticipant(c.Request.Context(), req.CheckinID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSerialCheckinNotFound):
			response.NotFound(c, 13001, "签到记录不存在")
		case errors.Is(err, service.ErrSerialAlreadyIssued):
			response.Conflict(c, 14002, "该参与者已签发过兑换码")
		case errors.Is(err, service.ErrNoRecipientAddress):
			response.Conflict(c, 14003, "无法确定收件邮箱")
		case errors.Is(err, service.ErrSerialGenerationFailed):
			response.Error(c, http.StatusInternalServerError, 14001, "兑换码生成失败，请重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// SendBulk 批量签发兑换码
// POST /api/v1/serials/send-bulk
func (h *SerialHandler) SendBulk(c *gin.Context) {
	var req dto.SendSerialBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.serialSvc.SendBulk(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Check 查询活动内某参与者标识是否已签发兑换码
// GET /api/v1/serials/check/:activity/:participant
func (h *SerialHandler) Check(c *gin.Context) {
	result, err := h.serialSvc.CheckIssued(
		c.Request.Context(), c.Param("activity"), c.Param("participant"))
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			response.NotFound(c, 12002, "活动不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
