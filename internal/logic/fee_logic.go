package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/money"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/phase"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeeLogic 手续费领取业务逻辑
type FeeLogic struct {
	db       *gorm.DB
	notifier notify.Publisher
}

// NewFeeLogic 创建手续费领取业务逻辑
func NewFeeLogic(db *gorm.DB, notifier notify.Publisher) *FeeLogic {
	return &FeeLogic{db: db, notifier: notifier}
}

// ClaimableFee 可领取手续费查询结果
type ClaimableFee struct {
	Amount   string `json:"amount"`
	CanClaim bool   `json:"can_claim"`
	Reason   string `json:"reason,omitempty"`
}

// ComputeFee 按手续费比例汇总已确认投资的手续费。
// 比例未设置时按默认值 3 计算。纯聚合，不访问链上账本。
func ComputeFee(program *model.Program, confirmedAmounts []string) (money.Amount, error) {
	feePct := money.MustParse(model.DefaultFeePercentage)
	if program.FeePercentage != nil {
		parsed, err := money.Parse(*program.FeePercentage)
		if err != nil {
			return money.Amount{}, fmt.Errorf("手续费比例无法解析: %w", err)
		}
		feePct = parsed
	}

	total := money.Zero()
	for _, s := range confirmedAmounts {
		amount, err := money.Parse(s)
		if err != nil {
			return money.Amount{}, fmt.Errorf("投资金额无法解析: %w", err)
		}
		total = total.Add(amount.PercentOf(feePct))
	}
	return total, nil
}

// GetClaimableFees 查询计划当前可领取的手续费，只读无副作用
func (l *FeeLogic) GetClaimableFees(programId, hostId int64) (*ClaimableFee, error) {
	var program model.Program
	if err := l.db.First(&program, programId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("计划不存在")
		}
		return nil, err
	}

	// 非主办方不暴露手续费金额
	if program.CreatorId != hostId {
		return &ClaimableFee{
			Amount: money.Zero().String(),
			Reason: "只有计划主办方可以领取手续费",
		}, nil
	}

	amount, err := l.sumProgramFees(l.db, &program)
	if err != nil {
		return nil, err
	}

	result := &ClaimableFee{Amount: amount.String()}

	if program.FundingEndDate == nil {
		result.Reason = "计划未配置募资结束时间"
		return result, nil
	}
	if ok, pendingEnd := phase.CanClaimFee(&program, time.Now()); !ok {
		result.Reason = fmt.Sprintf("待定期尚未结束，%s 之后可领取", pendingEnd.Format(time.RFC3339))
		return result, nil
	}

	var existing model.FeeClaim
	err = l.db.Where("program_id = ? AND claimed_by = ? AND status = ?",
		programId, hostId, model.FeeClaimStatusClaimed).First(&existing).Error
	if err == nil {
		result.Reason = "该计划的手续费已领取"
		return result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result.CanClaim = true
	return result, nil
}

// ClaimFeeInput 手续费领取请求
type ClaimFeeInput struct {
	ProgramId int64  `json:"program_id" binding:"required"`
	HostId    int64  `json:"host_id" binding:"required"`
	TxHash    string `json:"tx_hash" binding:"required"`
}

// ClaimFee 领取计划手续费。
// 前置条件（事务内）：操作者为主办方、募资结束时间已配置、
// 待定期已过、此前没有成功的领取记录。计划行加锁，
// 先读后写的幂等检查因此不会被并发领取绕过。
func (l *FeeLogic) ClaimFee(input ClaimFeeInput) (*model.FeeClaim, error) {
	now := time.Now()

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var program model.Program
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&program, input.ProgramId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("计划不存在")
		}
		return nil, err
	}

	if program.CreatorId != input.HostId {
		tx.Rollback()
		return nil, domainerr.Unauthorized("只有计划主办方可以领取手续费")
	}
	if program.FundingEndDate == nil {
		tx.Rollback()
		return nil, domainerr.WindowClosed("计划未配置募资结束时间，不能领取手续费")
	}
	if ok, pendingEnd := phase.CanClaimFee(&program, now); !ok {
		tx.Rollback()
		return nil, domainerr.WindowClosed("待定期尚未结束，%s 之后可领取手续费",
			pendingEnd.Format(time.RFC3339))
	}

	// 幂等检查：同一计划同一主办方只允许领取一次
	var existing model.FeeClaim
	err := tx.Where("program_id = ? AND claimed_by = ? AND status = ?",
		input.ProgramId, input.HostId, model.FeeClaimStatusClaimed).First(&existing).Error
	if err == nil {
		tx.Rollback()
		return nil, domainerr.AlreadyProcessed("该计划的手续费已于 %s 领取",
			existing.ClaimedAt.Format(time.RFC3339))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, err
	}

	amount, err := l.sumProgramFees(tx, &program)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	claim := model.FeeClaim{
		ProgramId: input.ProgramId,
		ClaimedBy: input.HostId,
		Amount:    amount.String(),
		TxHash:    input.TxHash,
		Status:    model.FeeClaimStatusClaimed,
		ClaimedAt: now,
	}
	if err := tx.Create(&claim).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("创建手续费领取记录失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// 提交后通知主办方，失败不回滚领取
	l.notifier.Publish("fee_claim", notify.Payload{
		Type:        "fee_claim",
		Action:      "claimed",
		RecipientId: input.HostId,
		EntityId:    claim.Id,
		Metadata: map[string]interface{}{
			"program_id": input.ProgramId,
			"amount":     claim.Amount,
		},
	})

	return &claim, nil
}

// sumProgramFees 汇总计划下所有申请的已确认投资手续费。
// 金额在数据库内以 numeric 聚合后，再按比例折算。
func (l *FeeLogic) sumProgramFees(tx *gorm.DB, program *model.Program) (money.Amount, error) {
	var amounts []string
	if err := tx.Model(&model.Investment{}).
		Joins("JOIN application ON application.id = investment.application_id").
		Where("application.program_id = ? AND investment.status = ?",
			program.Id, model.InvestmentStatusConfirmed).
		Pluck("investment.amount::text", &amounts).Error; err != nil {
		return money.Amount{}, fmt.Errorf("汇总计划投资金额失败: %w", err)
	}
	return ComputeFee(program, amounts)
}
