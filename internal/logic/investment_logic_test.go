package logic

import (
	"testing"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/money"
	"github.com/stretchr/testify/assert"
)

func amt(s string) *string {
	return &s
}

func cappedProgram() (*model.Program, *model.Application) {
	program := &model.Program{
		Id:               1,
		Type:             model.ProgramTypeFunding,
		MaxFundingAmount: amt("100000"),
	}
	application := &model.Application{
		Id:            10,
		ProgramId:     1,
		FundingTarget: amt("1000"),
	}
	return program, application
}

func TestCheckFundingLimitsCap(t *testing.T) {
	program, application := cappedProgram()

	// 0 + 600 ≤ 1000：放行
	err := checkFundingLimits(program, application, nil,
		money.Zero(), money.Zero(), money.MustParse("600"))
	assert.NoError(t, err)

	// 600 + 600 > 1000：拒绝
	err = checkFundingLimits(program, application, nil,
		money.MustParse("600"), money.Zero(), money.MustParse("600"))
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	// 600 + 400 = 1000：恰好达到目标，放行
	err = checkFundingLimits(program, application, nil,
		money.MustParse("600"), money.Zero(), money.MustParse("400"))
	assert.NoError(t, err)
}

func TestCheckFundingLimitsCapRequiresBothFields(t *testing.T) {
	program, application := cappedProgram()

	// 上限或目标缺失时不做上限检查
	program.MaxFundingAmount = nil
	err := checkFundingLimits(program, application, nil,
		money.MustParse("999999"), money.Zero(), money.MustParse("999999"))
	assert.NoError(t, err)

	program, application = cappedProgram()
	application.FundingTarget = nil
	err = checkFundingLimits(program, application, nil,
		money.MustParse("999999"), money.Zero(), money.MustParse("999999"))
	assert.NoError(t, err)
}

func TestCheckFundingLimitsConfirmSequence(t *testing.T) {
	// 两笔 600 的待确认投资先后转已确认：第一笔核对时已确认 0，
	// 第二笔核对时已确认 600，必须被拒绝，总额不能到 1200
	program, application := cappedProgram()

	confirmed := money.Zero()
	first := money.MustParse("600")
	assert.NoError(t, checkFundingLimits(program, application, nil,
		confirmed, money.Zero(), first))
	confirmed = confirmed.Add(first)

	err := checkFundingLimits(program, application, nil,
		confirmed, money.Zero(), money.MustParse("600"))
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))
	assert.Equal(t, "600", confirmed.String())
}

func TestCheckFundingLimitsTier(t *testing.T) {
	program, application := cappedProgram()
	program.FundingCondition = model.FundingConditionTier
	assignment := &model.TierAssignment{
		ProgramId:           1,
		UserId:              100,
		Tier:                "gold",
		MaxInvestmentAmount: "500",
	}

	// 未获等级分配：拒绝
	err := checkFundingLimits(program, application, nil,
		money.Zero(), money.Zero(), money.MustParse("100"))
	assert.Equal(t, domainerr.KindUnauthorized, domainerr.KindOf(err))

	// 单笔超限：拒绝
	err = checkFundingLimits(program, application, assignment,
		money.Zero(), money.Zero(), money.MustParse("600"))
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	// 累计 300 + 300 > 500：拒绝
	err = checkFundingLimits(program, application, assignment,
		money.MustParse("300"), money.MustParse("300"), money.MustParse("300"))
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	// 累计 300 + 200 = 500：恰好达到限额，放行
	err = checkFundingLimits(program, application, assignment,
		money.MustParse("300"), money.MustParse("300"), money.MustParse("200"))
	assert.NoError(t, err)
}
