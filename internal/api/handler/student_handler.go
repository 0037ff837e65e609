package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activity-hours/backend/internal/dto"
	"activity-hours/backend/internal/service"
	pkgerrors "activity-hours/backend/pkg/errors"
	"activity-hours/backend/pkg/response"
)

// StudentHandler 学生侧 HTTP 处理器（核销、评价、历史）
type StudentHandler struct {
	redeemSvc service.RedeemService
	reviewSvc service.ReviewService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(redeemSvc service.RedeemService, reviewSvc service.ReviewService) *StudentHandler {
	return &StudentHandler{redeemSvc: redeemSvc, reviewSvc: reviewSvc}
}

// RedeemSerial 核销兑换码
// POST /api/v1/student/redeem-serial
func (h *StudentHandler) RedeemSerial(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RedeemSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.redeemSvc.Redeem(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSerialNotFound):
			response.NotFound(c, 15001, "兑换码不存在")
		case errors.Is(err, service.ErrSerialRedeemed):
			response.Conflict(c, 15002, "兑换码已被核销")
		case errors.Is(err, service.ErrAlreadyRedeemedByYou):
			response.Conflict(c, 15003, "您已核销过该兑换码")
		case errors.Is(err, service.ErrSerialBoundToOther):
			response.Forbidden(c, 15004, "该兑换码已绑定其他账号")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// SubmitReview 提交活动评价并记入学时
// POST /api/v1/student/submit-review
func (h *StudentHandler) SubmitReview(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reviewSvc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHistoryNotFound):
			response.NotFound(c, 15005, "兑换记录不存在")
		case errors.Is(err, service.ErrHistoryNotYours):
			response.Forbidden(c, 15006, "无权操作他人的兑换记录")
		case errors.Is(err, service.ErrAlreadyReviewed),
			errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 15007, "该兑换记录已提交过评价")
		case errors.Is(err, service.ErrRatingOutOfRange):
			response.BadRequest(c, 15008, "评分必须在 1-5 之间")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// History 学生查询自己的兑换记录与学时
// GET /api/v1/student/history
func (h *StudentHandler) History(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.reviewSvc.ListHistory(c.Request.Context(), userID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}
