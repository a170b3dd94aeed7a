package logic

import (
	"testing"
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func tp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCanReclaimFundingFailure(t *testing.T) {
	investment := &model.Investment{Status: model.InvestmentStatusConfirmed}
	application := &model.Application{FundingSuccessful: false}
	program := &model.Program{FundingEndDate: tp("2024-06-30T00:00:00Z")}

	// 募资结束后一秒即可退回
	now := tp("2024-06-30T00:00:01Z")
	assert.True(t, CanReclaim(investment, application, program, nil, *now))

	// 募资结束前不可退回
	before := tp("2024-06-29T00:00:00Z")
	assert.False(t, CanReclaim(investment, application, program, nil, *before))

	// 募资成功后不可按失败退回
	application.FundingSuccessful = true
	assert.False(t, CanReclaim(investment, application, program, nil, *now))

	// 募资结束时间未配置
	application.FundingSuccessful = false
	program.FundingEndDate = nil
	assert.False(t, CanReclaim(investment, application, program, nil, *now))
}

func TestCanReclaimMissedMilestone(t *testing.T) {
	investment := &model.Investment{Status: model.InvestmentStatusConfirmed}
	application := &model.Application{FundingSuccessful: true}
	program := &model.Program{FundingEndDate: tp("2024-06-30T00:00:00Z")}
	now := *tp("2024-08-01T00:00:00Z")

	// 逾期且仍待完成的里程碑触发退回资格
	overdue := []model.Milestone{
		{Status: model.MilestoneStatusCompleted, Deadline: tp("2024-07-01T00:00:00Z")},
		{Status: model.MilestoneStatusPending, Deadline: tp("2024-07-15T00:00:00Z")},
	}
	assert.True(t, CanReclaim(investment, application, program, overdue, now))

	// 已完成的逾期里程碑不触发
	done := []model.Milestone{
		{Status: model.MilestoneStatusCompleted, Deadline: tp("2024-07-01T00:00:00Z")},
	}
	assert.False(t, CanReclaim(investment, application, program, done, now))

	// 未到期的待完成里程碑不触发
	future := []model.Milestone{
		{Status: model.MilestoneStatusPending, Deadline: tp("2024-09-01T00:00:00Z")},
	}
	assert.False(t, CanReclaim(investment, application, program, future, now))

	// 无截止时间的待完成里程碑不触发
	noDeadline := []model.Milestone{
		{Status: model.MilestoneStatusPending},
	}
	assert.False(t, CanReclaim(investment, application, program, noDeadline, now))
}

func TestCanReclaimRequiresConfirmedStatus(t *testing.T) {
	application := &model.Application{FundingSuccessful: false}
	program := &model.Program{FundingEndDate: tp("2024-06-30T00:00:00Z")}
	now := *tp("2024-07-01T00:00:00Z")

	pending := &model.Investment{Status: model.InvestmentStatusPending}
	assert.False(t, CanReclaim(pending, application, program, nil, now))

	refunded := &model.Investment{Status: model.InvestmentStatusRefunded}
	assert.False(t, CanReclaim(refunded, application, program, nil, now))
}
