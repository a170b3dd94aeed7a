package handler

import (
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// InvestmentResponse 投资记录响应模型
type InvestmentResponse struct {
	Id            int64      `json:"id"`
	ApplicationId int64      `json:"applicationId"`
	UserId        int64      `json:"userId"`
	Amount        string     `json:"amount"`
	Tier          *string    `json:"tier,omitempty"`
	Status        string     `json:"status"`
	TxHash        *string    `json:"txHash,omitempty"`
	ReclaimTxHash *string    `json:"reclaimTxHash,omitempty"`
	ReclaimedAt   *time.Time `json:"reclaimedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ToInvestmentResponse 转换投资记录
func ToInvestmentResponse(i *model.Investment) InvestmentResponse {
	return InvestmentResponse{
		Id:            i.Id,
		ApplicationId: i.ApplicationId,
		UserId:        i.UserId,
		Amount:        i.Amount,
		Tier:          i.Tier,
		Status:        string(i.Status),
		TxHash:        i.TxHash,
		ReclaimTxHash: i.ReclaimTxHash,
		ReclaimedAt:   i.ReclaimedAt,
		CreatedAt:     i.CreatedAt,
	}
}

// ToInvestmentResponseList 转换投资记录列表
func ToInvestmentResponseList(investments []model.Investment) []InvestmentResponse {
	out := make([]InvestmentResponse, 0, len(investments))
	for i := range investments {
		out = append(out, ToInvestmentResponse(&investments[i]))
	}
	return out
}

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	Id            int64      `json:"id"`
	ApplicationId int64      `json:"applicationId"`
	Title         string     `json:"title"`
	SortOrder     int        `json:"sortOrder"`
	Percentage    *string    `json:"percentage,omitempty"`
	Price         string     `json:"price"`
	Status        string     `json:"status"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ToMilestoneResponse 转换里程碑
func ToMilestoneResponse(m *model.Milestone) MilestoneResponse {
	return MilestoneResponse{
		Id:            m.Id,
		ApplicationId: m.ApplicationId,
		Title:         m.Title,
		SortOrder:     m.SortOrder,
		Percentage:    m.Percentage,
		Price:         m.Price,
		Status:        string(m.Status),
		Deadline:      m.Deadline,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToMilestoneResponseList 转换里程碑列表
func ToMilestoneResponseList(milestones []model.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, 0, len(milestones))
	for i := range milestones {
		out = append(out, ToMilestoneResponse(&milestones[i]))
	}
	return out
}

// FeeClaimResponse 手续费领取响应模型
type FeeClaimResponse struct {
	Id        int64     `json:"id"`
	ProgramId int64     `json:"programId"`
	ClaimedBy int64     `json:"claimedBy"`
	Amount    string    `json:"amount"`
	TxHash    string    `json:"txHash"`
	Status    string    `json:"status"`
	ClaimedAt time.Time `json:"claimedAt"`
}

// ToFeeClaimResponse 转换手续费领取记录
func ToFeeClaimResponse(f *model.FeeClaim) FeeClaimResponse {
	return FeeClaimResponse{
		Id:        f.Id,
		ProgramId: f.ProgramId,
		ClaimedBy: f.ClaimedBy,
		Amount:    f.Amount,
		TxHash:    f.TxHash,
		Status:    string(f.Status),
		ClaimedAt: f.ClaimedAt,
	}
}

// GetInvestmentsResponse 投资记录列表响应
type GetInvestmentsResponse struct {
	Investments []InvestmentResponse `json:"investments"`
	Pagination  Pagination           `json:"pagination"`
}

// GetInvestmentStatsResponse 投资统计响应
type GetInvestmentStatsResponse struct {
	Stats map[string]interface{} `json:"stats"`
}
