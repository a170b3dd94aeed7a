package logic

import (
	"testing"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(s string) *string {
	return &s
}

func milestoneSet() []model.Milestone {
	return []model.Milestone{
		{Id: 1, ApplicationId: 10, SortOrder: 1, Percentage: pct("40")},
		{Id: 2, ApplicationId: 10, SortOrder: 2, Percentage: pct("30")},
		{Id: 3, ApplicationId: 10, SortOrder: 3},
	}
}

func TestValidateAndPrice(t *testing.T) {
	// 现有 [40, 30]，第三个更新为 30：总和恰好 100
	price, err := ValidateAndPrice(milestoneSet(), 3, "30", "1000")
	require.NoError(t, err)
	assert.Equal(t, "300", price.String())
}

func TestValidateAndPriceSumExceeded(t *testing.T) {
	// 现有 [40, 30]，第三个更新为 40：总和 110，必须拒绝
	_, err := ValidateAndPrice(milestoneSet(), 3, "40", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindInvariantViolation, domainerr.KindOf(err))
}

func TestValidateAndPriceSingleValueBounds(t *testing.T) {
	_, err := ValidateAndPrice(milestoneSet(), 3, "-1", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindInvariantViolation, domainerr.KindOf(err))

	_, err = ValidateAndPrice([]model.Milestone{{Id: 1}}, 1, "100.01", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindInvariantViolation, domainerr.KindOf(err))

	_, err = ValidateAndPrice(milestoneSet(), 3, "abc", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindInvariantViolation, domainerr.KindOf(err))
}

func TestValidateAndPriceReplacesExisting(t *testing.T) {
	// 更新已有百分比的里程碑：旧值 40 被替换，不重复计入
	price, err := ValidateAndPrice(milestoneSet(), 1, "70", "1000")
	require.NoError(t, err)
	assert.Equal(t, "700", price.String())

	// 替换后总和超限
	_, err = ValidateAndPrice(milestoneSet(), 1, "71", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindInvariantViolation, domainerr.KindOf(err))
}

func TestValidateAndPriceMissingPercentageCountsAsZero(t *testing.T) {
	// 百分比缺失的里程碑按 0 计，总和允许小于 100
	ms := []model.Milestone{
		{Id: 1, Percentage: pct("10")},
		{Id: 2},
		{Id: 3},
	}
	price, err := ValidateAndPrice(ms, 2, "5", "200")
	require.NoError(t, err)
	assert.Equal(t, "10", price.String())
}

func TestValidateAndPriceUnknownMilestone(t *testing.T) {
	_, err := ValidateAndPrice(milestoneSet(), 99, "10", "1000")
	require.Error(t, err)
	assert.Equal(t, domainerr.KindNotFound, domainerr.KindOf(err))
}

func TestValidateAndPriceDecimalPrecision(t *testing.T) {
	// 小数百分比不经过浮点，结果必须精确
	price, err := ValidateAndPrice([]model.Milestone{{Id: 1}}, 1, "33.33", "99.99")
	require.NoError(t, err)
	assert.Equal(t, "33.326667", price.String())
}

func TestCheckStatusTransition(t *testing.T) {
	application := &model.Application{Id: 10, ApplicantId: 100}
	program := &model.Program{Id: 1, CreatorId: 200}

	tests := []struct {
		name     string
		current  model.MilestoneStatus
		next     model.MilestoneStatus
		actorId  int64
		wantKind domainerr.Kind
	}{
		{"申请人提交", model.MilestoneStatusPending, model.MilestoneStatusSubmitted, 100, ""},
		{"驳回后重新提交", model.MilestoneStatusRejected, model.MilestoneStatusSubmitted, 100, ""},
		{"非申请人提交", model.MilestoneStatusPending, model.MilestoneStatusSubmitted, 200, domainerr.KindUnauthorized},
		{"重复提交", model.MilestoneStatusSubmitted, model.MilestoneStatusSubmitted, 100, domainerr.KindInvariantViolation},
		{"主办方验收", model.MilestoneStatusSubmitted, model.MilestoneStatusCompleted, 200, ""},
		{"主办方驳回", model.MilestoneStatusSubmitted, model.MilestoneStatusRejected, 200, ""},
		{"非主办方验收", model.MilestoneStatusSubmitted, model.MilestoneStatusCompleted, 100, domainerr.KindUnauthorized},
		{"未提交就验收", model.MilestoneStatusPending, model.MilestoneStatusCompleted, 200, domainerr.KindInvariantViolation},
		{"非法目标状态", model.MilestoneStatusPending, model.MilestoneStatusPending, 100, domainerr.KindInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.Milestone{Id: 1, ApplicationId: 10, Status: tt.current}
			err := checkStatusTransition(m, application, program, tt.actorId, tt.next)
			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantKind, domainerr.KindOf(err))
			}
		})
	}
}
