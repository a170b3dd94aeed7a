package handler

import (
	"net/http"
	"strconv"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logic"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/gin-gonic/gin"
)

// MilestoneHandler 里程碑处理器
type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(milestoneLogic *logic.MilestoneLogic) *MilestoneHandler {
	return &MilestoneHandler{milestoneLogic: milestoneLogic}
}

// UpdateMilestone 更新里程碑（百分比或状态，二选一）
func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	milestoneId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑ID")
		return
	}

	var req struct {
		UserId     int64   `json:"user_id" binding:"required"`
		Percentage *string `json:"percentage"`
		Status     *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	switch {
	case req.Percentage != nil:
		milestone, err := h.milestoneLogic.UpdateMilestonePercentage(milestoneId, req.UserId, *req.Percentage)
		if err != nil {
			DomainErrorResponse(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "里程碑百分比更新成功", ToMilestoneResponse(milestone))
	case req.Status != nil:
		milestone, err := h.milestoneLogic.UpdateMilestoneStatus(milestoneId, req.UserId, model.MilestoneStatus(*req.Status))
		if err != nil {
			DomainErrorResponse(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "里程碑状态更新成功", ToMilestoneResponse(milestone))
	default:
		ErrorResponse(c, http.StatusBadRequest, "必须提供 percentage 或 status")
	}
}

// GetApplicationMilestones 获取申请的里程碑列表
func (h *MilestoneHandler) GetApplicationMilestones(c *gin.Context) {
	applicationId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请ID")
		return
	}

	milestones, err := h.milestoneLogic.GetApplicationMilestones(applicationId)
	if err != nil {
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑列表成功", ToMilestoneResponseList(milestones))
}
