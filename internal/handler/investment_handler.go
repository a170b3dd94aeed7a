package handler

import (
	"net/http"
	"strconv"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logic"
	"github.com/gin-gonic/gin"
)

// InvestmentHandler 投资处理器
type InvestmentHandler struct {
	investmentLogic *logic.InvestmentLogic
	reclaimLogic    *logic.ReclaimLogic
}

// NewInvestmentHandler 创建投资处理器
func NewInvestmentHandler(investmentLogic *logic.InvestmentLogic, reclaimLogic *logic.ReclaimLogic) *InvestmentHandler {
	return &InvestmentHandler{
		investmentLogic: investmentLogic,
		reclaimLogic:    reclaimLogic,
	}
}

// CreateInvestment 创建投资
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	var input logic.RecordInvestmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	investment, err := h.investmentLogic.RecordInvestment(input)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "投资成功", ToInvestmentResponse(investment))
}

// ConfirmInvestment 确认投资
func (h *InvestmentHandler) ConfirmInvestment(c *gin.Context) {
	investmentId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的投资ID")
		return
	}

	var req struct {
		UserId int64  `json:"user_id" binding:"required"`
		TxHash string `json:"tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	investment, err := h.investmentLogic.ConfirmInvestment(investmentId, req.UserId, req.TxHash)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投资确认成功", ToInvestmentResponse(investment))
}

// ReclaimInvestment 退回投资
func (h *InvestmentHandler) ReclaimInvestment(c *gin.Context) {
	investmentId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的投资ID")
		return
	}

	var req struct {
		UserId        int64  `json:"user_id" binding:"required"`
		ReclaimTxHash string `json:"reclaim_tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	investment, err := h.reclaimLogic.ReclaimInvestment(logic.ReclaimInvestmentInput{
		InvestmentId:  investmentId,
		UserId:        req.UserId,
		ReclaimTxHash: req.ReclaimTxHash,
	})
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投资退回成功", ToInvestmentResponse(investment))
}

// GetApplicationInvestments 获取申请的投资记录
func (h *InvestmentHandler) GetApplicationInvestments(c *gin.Context) {
	applicationId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	investments, total, err := h.investmentLogic.GetApplicationInvestments(applicationId, page, pageSize)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取投资记录成功", GetInvestmentsResponse{
		Investments: ToInvestmentResponseList(investments),
		Pagination:  pagination,
	})
}

// GetInvestmentStats 获取申请的投资统计信息
func (h *InvestmentHandler) GetInvestmentStats(c *gin.Context) {
	applicationId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请ID")
		return
	}

	stats, err := h.investmentLogic.GetInvestmentStats(applicationId)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取投资统计成功", GetInvestmentStatsResponse{Stats: stats})
}
