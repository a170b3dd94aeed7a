package handler

import (
	"net/http"
	"strconv"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logic"
	"github.com/gin-gonic/gin"
)

// FeeHandler 手续费处理器
type FeeHandler struct {
	feeLogic *logic.FeeLogic
}

// NewFeeHandler 创建手续费处理器
func NewFeeHandler(feeLogic *logic.FeeLogic) *FeeHandler {
	return &FeeHandler{feeLogic: feeLogic}
}

// ClaimFees 领取计划手续费
func (h *FeeHandler) ClaimFees(c *gin.Context) {
	programId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var req struct {
		HostId int64  `json:"host_id" binding:"required"`
		TxHash string `json:"tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	claim, err := h.feeLogic.ClaimFee(logic.ClaimFeeInput{
		ProgramId: programId,
		HostId:    req.HostId,
		TxHash:    req.TxHash,
	})
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "手续费领取成功", ToFeeClaimResponse(claim))
}

// GetClaimableFees 查询计划可领取的手续费
func (h *FeeHandler) GetClaimableFees(c *gin.Context) {
	programId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	hostId, err := strconv.ParseInt(c.Query("host_id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的主办方ID")
		return
	}

	claimable, err := h.feeLogic.GetClaimableFees(programId, hostId)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查询可领取手续费成功", claimable)
}
