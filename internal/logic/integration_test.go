//go:build integration

package logic

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// silentPublisher 测试用通知发布器，不做任何事
type silentPublisher struct{}

func (silentPublisher) Publish(string, notify.Payload) {}

// openTestDB 连接 TEST_DATABASE_DSN 指向的测试库并清空全部表。
// 未配置 DSN 时跳过测试。
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过数据库测试")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Program{},
		&model.Application{},
		&model.Milestone{},
		&model.Investment{},
		&model.TierAssignment{},
		&model.FeeClaim{},
	))
	require.NoError(t, db.Exec(
		"TRUNCATE TABLE investment, fee_claim, tier_assignment, milestone, application, program RESTART IDENTITY CASCADE",
	).Error)
	return db
}

// seedFundingProgram 创建一个募资窗口当前开放的资助计划
func seedFundingProgram(t *testing.T, db *gorm.DB, mutate func(*model.Program)) *model.Program {
	t.Helper()

	now := time.Now()
	appStart := now.Add(-72 * time.Hour)
	appEnd := now.Add(-48 * time.Hour)
	fundStart := now.Add(-1 * time.Hour)
	fundEnd := now.Add(1 * time.Hour)

	program := &model.Program{
		Name:                 "集成测试计划",
		Type:                 model.ProgramTypeFunding,
		Status:               model.ProgramStatusPublished,
		ApplicationStartDate: &appStart,
		ApplicationEndDate:   &appEnd,
		FundingStartDate:     &fundStart,
		FundingEndDate:       &fundEnd,
		MaxFundingAmount:     amt("100000"),
		CreatorId:            1,
	}
	if mutate != nil {
		mutate(program)
	}
	require.NoError(t, db.Create(program).Error)
	return program
}

func seedApplication(t *testing.T, db *gorm.DB, programId int64, target string) *model.Application {
	t.Helper()

	application := &model.Application{
		ProgramId:     programId,
		ApplicantId:   2,
		Name:          "集成测试申请",
		FundingTarget: amt(target),
		Status:        model.ApplicationStatusApproved,
	}
	require.NoError(t, db.Create(application).Error)
	return application
}

func TestRecordInvestmentRejectsOverTarget(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, nil)
	application := seedApplication(t, db, program.Id, "1000")
	logic := NewInvestmentLogic(db, silentPublisher{})

	_, err := logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "600", TxHash: "0xint01",
	})
	require.NoError(t, err)

	// 600 + 600 越过 1000 的目标
	_, err = logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 8, Amount: "600", TxHash: "0xint02",
	})
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	// 恰好补满到目标
	_, err = logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 8, Amount: "400", TxHash: "0xint03",
	})
	require.NoError(t, err)

	stats, err := logic.GetInvestmentStats(application.Id)
	require.NoError(t, err)
	assert.Equal(t, "1000", stats["confirmed_amount"])
}

func TestRecordInvestmentConcurrentOverTarget(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, nil)
	application := seedApplication(t, db, program.Id, "1000")
	logic := NewInvestmentLogic(db, silentPublisher{})

	// 两笔 600 同时写入，申请行锁保证只放行一笔
	inputs := []RecordInvestmentInput{
		{ApplicationId: application.Id, UserId: 7, Amount: "600", TxHash: "0xint11"},
		{ApplicationId: application.Id, UserId: 8, Amount: "600", TxHash: "0xint12"},
	}
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input RecordInvestmentInput) {
			defer wg.Done()
			_, errs[i] = logic.RecordInvestment(input)
		}(i, input)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)

	stats, err := logic.GetInvestmentStats(application.Id)
	require.NoError(t, err)
	assert.Equal(t, "600", stats["confirmed_amount"])
}

func TestConfirmInvestmentRechecksTarget(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, nil)
	application := seedApplication(t, db, program.Id, "1000")
	logic := NewInvestmentLogic(db, silentPublisher{})

	// 两笔无哈希的待确认投资都能落库，互不冲突
	first, err := logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "600",
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvestmentStatusPending, first.Status)
	assert.Nil(t, first.TxHash)

	second, err := logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 8, Amount: "600",
	})
	require.NoError(t, err)
	assert.Nil(t, second.TxHash)

	// 第一笔转已确认
	confirmed, err := logic.ConfirmInvestment(first.Id, 7, "0xint21")
	require.NoError(t, err)
	assert.Equal(t, model.InvestmentStatusConfirmed, confirmed.Status)

	// 第二笔确认时重新核对上限：600 + 600 > 1000，拒绝
	_, err = logic.ConfirmInvestment(second.Id, 8, "0xint22")
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	var reloaded model.Investment
	require.NoError(t, db.First(&reloaded, second.Id).Error)
	assert.Equal(t, model.InvestmentStatusPending, reloaded.Status)

	stats, err := logic.GetInvestmentStats(application.Id)
	require.NoError(t, err)
	assert.Equal(t, "600", stats["confirmed_amount"])

	// 已确认的投资不能再确认
	_, err = logic.ConfirmInvestment(first.Id, 7, "0xint23")
	assert.Equal(t, domainerr.KindAlreadyProcessed, domainerr.KindOf(err))
}

func TestRecordInvestmentTierLimit(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, func(p *model.Program) {
		p.FundingCondition = model.FundingConditionTier
	})
	application := seedApplication(t, db, program.Id, "10000")
	require.NoError(t, db.Create(&model.TierAssignment{
		ProgramId: program.Id, UserId: 7, Tier: "gold", MaxInvestmentAmount: "500",
	}).Error)
	logic := NewInvestmentLogic(db, silentPublisher{})

	// 未分配等级的投资人被拒绝
	_, err := logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 9, Amount: "100", TxHash: "0xint31",
	})
	assert.Equal(t, domainerr.KindUnauthorized, domainerr.KindOf(err))

	// 单笔超出等级限额
	_, err = logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "600", TxHash: "0xint32",
	})
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	investment, err := logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "300", TxHash: "0xint33",
	})
	require.NoError(t, err)
	require.NotNil(t, investment.Tier)
	assert.Equal(t, "gold", *investment.Tier)

	// 累计 300 + 300 超出 500
	_, err = logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "300", TxHash: "0xint34",
	})
	assert.Equal(t, domainerr.KindLimitExceeded, domainerr.KindOf(err))

	// 恰好补满到限额
	_, err = logic.RecordInvestment(RecordInvestmentInput{
		ApplicationId: application.Id, UserId: 7, Amount: "200", TxHash: "0xint35",
	})
	require.NoError(t, err)
}

func TestReclaimInvestmentOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, func(p *model.Program) {
		fundStart := time.Now().Add(-3 * time.Hour)
		fundEnd := time.Now().Add(-1 * time.Hour)
		p.FundingStartDate = &fundStart
		p.FundingEndDate = &fundEnd
	})
	application := seedApplication(t, db, program.Id, "1000")

	investment := &model.Investment{
		ApplicationId: application.Id,
		UserId:        7,
		Amount:        "600",
		Status:        model.InvestmentStatusConfirmed,
		TxHash:        amt("0xint41"),
	}
	require.NoError(t, db.Create(investment).Error)

	logic := NewReclaimLogic(db, silentPublisher{})

	// 募资失败（未达标且募资已结束），允许退回
	reclaimed, err := logic.ReclaimInvestment(ReclaimInvestmentInput{
		InvestmentId: investment.Id, UserId: 7, ReclaimTxHash: "0xint42",
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvestmentStatusRefunded, reclaimed.Status)

	// 已退回为终态，第二次退回被拒绝
	_, err = logic.ReclaimInvestment(ReclaimInvestmentInput{
		InvestmentId: investment.Id, UserId: 7, ReclaimTxHash: "0xint43",
	})
	assert.Equal(t, domainerr.KindAlreadyProcessed, domainerr.KindOf(err))

	var reloaded model.Investment
	require.NoError(t, db.First(&reloaded, investment.Id).Error)
	assert.Equal(t, model.InvestmentStatusRefunded, reloaded.Status)
}

func TestClaimFeeWindowAndIdempotency(t *testing.T) {
	db := openTestDB(t)
	program := seedFundingProgram(t, db, func(p *model.Program) {
		fundStart := time.Now().Add(-24 * time.Hour)
		fundEnd := time.Now().Add(-12 * time.Hour)
		p.FundingStartDate = &fundStart
		p.FundingEndDate = &fundEnd
	})
	application := seedApplication(t, db, program.Id, "10000")
	require.NoError(t, db.Create(&model.Investment{
		ApplicationId: application.Id, UserId: 7, Amount: "1000",
		Status: model.InvestmentStatusConfirmed, TxHash: amt("0xint51"),
	}).Error)
	require.NoError(t, db.Create(&model.Investment{
		ApplicationId: application.Id, UserId: 8, Amount: "500",
		Status: model.InvestmentStatusConfirmed, TxHash: amt("0xint52"),
	}).Error)

	logic := NewFeeLogic(db, silentPublisher{})

	// 募资结束 12 小时：仍在待定期内，不能领取
	_, err := logic.ClaimFee(ClaimFeeInput{
		ProgramId: program.Id, HostId: 1, TxHash: "0xint53",
	})
	assert.Equal(t, domainerr.KindWindowClosed, domainerr.KindOf(err))

	claimable, err := logic.GetClaimableFees(program.Id, 1)
	require.NoError(t, err)
	assert.False(t, claimable.CanClaim)

	// 待定期过后可以领取：默认 3% 手续费，(1000 + 500) * 3% = 45
	require.NoError(t, db.Model(program).
		Update("funding_end_date", time.Now().Add(-25*time.Hour)).Error)

	claim, err := logic.ClaimFee(ClaimFeeInput{
		ProgramId: program.Id, HostId: 1, TxHash: "0xint54",
	})
	require.NoError(t, err)
	assert.Equal(t, "45", claim.Amount)
	assert.Equal(t, model.FeeClaimStatusClaimed, claim.Status)

	// 同一计划不能重复领取
	_, err = logic.ClaimFee(ClaimFeeInput{
		ProgramId: program.Id, HostId: 1, TxHash: "0xint55",
	})
	assert.Equal(t, domainerr.KindAlreadyProcessed, domainerr.KindOf(err))

	// 非主办方查询不到金额
	claimable, err = logic.GetClaimableFees(program.Id, 99)
	require.NoError(t, err)
	assert.False(t, claimable.CanClaim)
	assert.Equal(t, "0", claimable.Amount)
}
