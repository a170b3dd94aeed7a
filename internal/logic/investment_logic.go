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

// InvestmentLogic 投资账本业务逻辑。
// 核心职责：募资上限与投资等级限额的校验和投资状态写入
// 必须在同一事务内完成，杜绝并发投资共同超出上限。
type InvestmentLogic struct {
	db       *gorm.DB
	notifier notify.Publisher
}

// NewInvestmentLogic 创建投资账本业务逻辑
func NewInvestmentLogic(db *gorm.DB, notifier notify.Publisher) *InvestmentLogic {
	return &InvestmentLogic{db: db, notifier: notifier}
}

// RecordInvestmentInput 投资请求
type RecordInvestmentInput struct {
	ApplicationId int64  `json:"application_id" binding:"required"`
	UserId        int64  `json:"user_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	TxHash        string `json:"tx_hash"`
}

// checkFundingLimits 校验募资上限与等级限额。
// confirmedTotal 为申请当前已确认投资总额，userTotal 为该投资人
// 在此申请的已确认投资总额，amount 为即将计入的金额。
// 投资写入与待确认转已确认共用这一套校验。
func checkFundingLimits(program *model.Program, application *model.Application, assignment *model.TierAssignment, confirmedTotal, userTotal, amount money.Amount) error {
	if program.MaxFundingAmount != nil && application.FundingTarget != nil {
		target, err := money.Parse(*application.FundingTarget)
		if err != nil {
			return fmt.Errorf("募资目标无法解析: %w", err)
		}
		if confirmedTotal.Add(amount).GreaterThan(target) {
			return domainerr.LimitExceeded("投资后总额将超过募资目标 %s（已确认 %s）",
				target.String(), confirmedTotal.String())
		}
	}

	if program.FundingCondition == model.FundingConditionTier {
		if assignment == nil {
			return domainerr.Unauthorized("该计划要求投资等级，当前用户未获分配")
		}
		limit, err := money.Parse(assignment.MaxInvestmentAmount)
		if err != nil {
			return fmt.Errorf("等级限额无法解析: %w", err)
		}
		if amount.GreaterThan(limit) {
			return domainerr.LimitExceeded("投资金额超过等级 %s 的限额 %s",
				assignment.Tier, limit.String())
		}
		if userTotal.Add(amount).GreaterThan(limit) {
			return domainerr.LimitExceeded("累计投资将超过等级 %s 的限额 %s（已确认 %s）",
				assignment.Tier, limit.String(), userTotal.String())
		}
	}

	return nil
}

// RecordInvestment 记录一笔投资。
// 校验顺序（事务内，首个失败立即返回）：
//  1. 申请存在且所属计划为资助类型
//  2. 募资窗口开放
//  3. 配置了募资目标时，已确认投资总和加本笔不得超过目标
//  4. 等级准入计划要求投资人持有等级分配，且单笔与累计均不超过限额
//
// 申请行加排它锁，使同一申请的上限检查串行执行。
func (l *InvestmentLogic) RecordInvestment(input RecordInvestmentInput) (*model.Investment, error) {
	amount, err := money.Parse(input.Amount)
	if err != nil {
		return nil, domainerr.InvariantViolation("投资金额格式无效: %s", input.Amount)
	}
	if !amount.IsPositive() {
		return nil, domainerr.InvariantViolation("投资金额必须大于 0")
	}

	now := time.Now()

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 锁住申请行：并发投资在此串行
	var application model.Application
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, input.ApplicationId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("申请不存在")
		}
		return nil, err
	}

	var program model.Program
	if err := tx.First(&program, application.ProgramId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("计划不存在")
		}
		return nil, err
	}

	if program.Type != model.ProgramTypeFunding {
		tx.Rollback()
		return nil, domainerr.InvariantViolation("该计划不是资助计划，不能投资")
	}

	if !phase.CanInvest(&program, now) {
		tx.Rollback()
		return nil, domainerr.WindowClosed("当前不在募资窗口内，不能投资")
	}

	assignment, confirmedTotal, userTotal, err := l.loadLimitInputs(tx, &program, &application, input.UserId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := checkFundingLimits(&program, &application, assignment, confirmedTotal, userTotal, amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	var tier *string
	if assignment != nil {
		tier = &assignment.Tier
	}

	// 提供了交易哈希即视为已确认
	status := model.InvestmentStatusPending
	var txHash *string
	if input.TxHash != "" {
		status = model.InvestmentStatusConfirmed
		txHash = &input.TxHash
	}

	investment := model.Investment{
		ApplicationId: application.Id,
		UserId:        input.UserId,
		Amount:        amount.String(),
		Tier:          tier,
		Status:        status,
		TxHash:        txHash,
	}
	if err := tx.Create(&investment).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("创建投资记录失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// 提交后通知申请人，失败不回滚投资
	l.notifier.Publish("investment", notify.Payload{
		Type:        "investment",
		Action:      "created",
		RecipientId: application.ApplicantId,
		EntityId:    investment.Id,
		Metadata: map[string]interface{}{
			"application_id": application.Id,
			"amount":         investment.Amount,
			"status":         string(investment.Status),
		},
	})

	return &investment, nil
}

// ConfirmInvestment 补充链上交易哈希，将待确认投资转为已确认。
// 待确认投资不占用任何额度，转已确认才计入已确认总额，
// 所以这里必须在申请行锁下重新核对募资上限与等级限额，
// 否则多笔待确认投资可以绕过 RecordInvestment 的检查共同超限。
func (l *InvestmentLogic) ConfirmInvestment(investmentId, userId int64, txHash string) (*model.Investment, error) {
	if txHash == "" {
		return nil, domainerr.InvariantViolation("交易哈希不能为空")
	}

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var investment model.Investment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&investment, investmentId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("投资记录不存在")
		}
		return nil, err
	}

	if investment.UserId != userId {
		tx.Rollback()
		return nil, domainerr.Unauthorized("只有投资人本人可以确认投资")
	}
	if investment.Status != model.InvestmentStatusPending {
		tx.Rollback()
		return nil, domainerr.AlreadyProcessed("投资已处于 %s 状态，不能再确认", investment.Status)
	}

	// 与 RecordInvestment 相同的申请行锁，上限核对在锁下串行
	var application model.Application
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, investment.ApplicationId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var program model.Program
	if err := tx.First(&program, application.ProgramId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	amount, err := money.Parse(investment.Amount)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("投资金额无法解析: %w", err)
	}

	assignment, confirmedTotal, userTotal, err := l.loadLimitInputs(tx, &program, &application, investment.UserId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := checkFundingLimits(&program, &application, assignment, confirmedTotal, userTotal, amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"status":  model.InvestmentStatusConfirmed,
		"tx_hash": txHash,
	}
	if err := tx.Model(&investment).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("确认投资失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	investment.Status = model.InvestmentStatusConfirmed
	investment.TxHash = &txHash
	return &investment, nil
}

// loadLimitInputs 在当前事务内装载上限校验所需的聚合值：
// 投资人的等级分配（非等级准入计划时为 nil）、申请的已确认投资
// 总额、该投资人的已确认投资总额。
func (l *InvestmentLogic) loadLimitInputs(tx *gorm.DB, program *model.Program, application *model.Application, userId int64) (*model.TierAssignment, money.Amount, money.Amount, error) {
	confirmedTotal, err := sumConfirmedInvestments(tx, application.Id, 0)
	if err != nil {
		return nil, money.Amount{}, money.Amount{}, err
	}

	var assignment *model.TierAssignment
	userTotal := money.Zero()
	if program.FundingCondition == model.FundingConditionTier {
		var found model.TierAssignment
		err := tx.Where("program_id = ? AND user_id = ?", program.Id, userId).
			First(&found).Error
		switch {
		case err == nil:
			assignment = &found
		case errors.Is(err, gorm.ErrRecordNotFound):
			// assignment 保持 nil，由 checkFundingLimits 拒绝
		default:
			return nil, money.Amount{}, money.Amount{}, err
		}

		userTotal, err = sumConfirmedInvestments(tx, application.Id, userId)
		if err != nil {
			return nil, money.Amount{}, money.Amount{}, err
		}
	}

	return assignment, confirmedTotal, userTotal, nil
}

// GetApplicationInvestments 获取申请的投资记录（分页）
func (l *InvestmentLogic) GetApplicationInvestments(applicationId int64, page, pageSize int) ([]model.Investment, int64, error) {
	var investments []model.Investment
	var total int64

	if err := l.db.Model(&model.Investment{}).
		Where("application_id = ?", applicationId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取投资记录总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("application_id = ?", applicationId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&investments).Error; err != nil {
		return nil, 0, fmt.Errorf("获取投资记录失败: %w", err)
	}

	return investments, total, nil
}

// GetInvestmentStats 获取申请的投资统计信息
func (l *InvestmentLogic) GetInvestmentStats(applicationId int64) (map[string]interface{}, error) {
	var totalCount int64
	if err := l.db.Model(&model.Investment{}).
		Where("application_id = ?", applicationId).Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("获取投资笔数失败: %w", err)
	}

	confirmed, err := sumConfirmedInvestments(l.db, applicationId, 0)
	if err != nil {
		return nil, err
	}

	var uniqueInvestors int64
	if err := l.db.Model(&model.Investment{}).
		Where("application_id = ? AND status = ?", applicationId, model.InvestmentStatusConfirmed).
		Select("COUNT(DISTINCT user_id)").Scan(&uniqueInvestors).Error; err != nil {
		return nil, fmt.Errorf("获取投资人数失败: %w", err)
	}

	return map[string]interface{}{
		"total_investments": totalCount,
		"confirmed_amount":  confirmed.String(),
		"unique_investors":  uniqueInvestors,
	}, nil
}

// sumConfirmedInvestments 在当前事务内重新聚合已确认投资总额。
// userId 为 0 时统计整个申请，否则只统计该投资人。
// 求和在数据库内以 numeric 完成，结果按十进制字符串取回。
func sumConfirmedInvestments(tx *gorm.DB, applicationId, userId int64) (money.Amount, error) {
	query := tx.Model(&model.Investment{}).
		Where("application_id = ? AND status = ?", applicationId, model.InvestmentStatusConfirmed)
	if userId != 0 {
		query = query.Where("user_id = ?", userId)
	}

	var sum string
	if err := query.Select("COALESCE(SUM(amount), 0)::text").Scan(&sum).Error; err != nil {
		return money.Amount{}, fmt.Errorf("聚合已确认投资总额失败: %w", err)
	}
	return money.Parse(sum)
}
