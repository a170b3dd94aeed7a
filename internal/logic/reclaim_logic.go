package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReclaimLogic 投资退回业务逻辑
type ReclaimLogic struct {
	db       *gorm.DB
	notifier notify.Publisher
}

// NewReclaimLogic 创建投资退回业务逻辑
func NewReclaimLogic(db *gorm.DB, notifier notify.Publisher) *ReclaimLogic {
	return &ReclaimLogic{db: db, notifier: notifier}
}

// CanReclaim 判断一笔已确认投资是否可以退回。
// 满足任一条件即可：
//   - 募资失败：申请未募资成功，且当前时间已过计划的募资结束时间
//   - 里程碑逾期：存在截止时间已过且仍处于待完成状态的里程碑
func CanReclaim(investment *model.Investment, application *model.Application, program *model.Program, milestones []model.Milestone, now time.Time) bool {
	if investment.Status != model.InvestmentStatusConfirmed {
		return false
	}

	if !application.FundingSuccessful &&
		program.FundingEndDate != nil && now.After(*program.FundingEndDate) {
		return true
	}

	for _, m := range milestones {
		if m.Status == model.MilestoneStatusPending &&
			m.Deadline != nil && m.Deadline.Before(now) {
			return true
		}
	}
	return false
}

// ReclaimInvestmentInput 退回请求
type ReclaimInvestmentInput struct {
	InvestmentId  int64  `json:"investment_id" binding:"required"`
	UserId        int64  `json:"user_id" binding:"required"`
	ReclaimTxHash string `json:"reclaim_tx_hash" binding:"required"`
}

// ReclaimInvestment 退回一笔已确认投资。
// 已退回为终态：再次退回返回 AlreadyProcessed，且不允许恢复为已确认。
func (l *ReclaimLogic) ReclaimInvestment(input ReclaimInvestmentInput) (*model.Investment, error) {
	now := time.Now()

	tx := l.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 投资行加锁，并发退回只会放行一个
	var investment model.Investment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&investment, input.InvestmentId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("投资记录不存在")
		}
		return nil, err
	}

	if investment.UserId != input.UserId {
		tx.Rollback()
		return nil, domainerr.Unauthorized("只有投资人本人可以申请退回")
	}

	switch investment.Status {
	case model.InvestmentStatusRefunded:
		tx.Rollback()
		return nil, domainerr.AlreadyProcessed("该投资已退回")
	case model.InvestmentStatusPending:
		tx.Rollback()
		return nil, domainerr.InvariantViolation("投资尚未确认，不能退回")
	}

	var application model.Application
	if err := tx.First(&application, investment.ApplicationId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var program model.Program
	if err := tx.First(&program, application.ProgramId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var milestones []model.Milestone
	if err := tx.Where("application_id = ?", application.Id).
		Order("sort_order ASC").Find(&milestones).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if !CanReclaim(&investment, &application, &program, milestones, now) {
		tx.Rollback()
		return nil, domainerr.WindowClosed("当前不满足退回条件：募资未失败且无逾期里程碑")
	}

	updates := map[string]interface{}{
		"status":          model.InvestmentStatusRefunded,
		"reclaim_tx_hash": input.ReclaimTxHash,
		"reclaimed_at":    now,
	}
	if err := tx.Model(&investment).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("退回投资失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	investment.Status = model.InvestmentStatusRefunded
	investment.ReclaimTxHash = &input.ReclaimTxHash
	investment.ReclaimedAt = &now

	// 提交后通知申请人，失败不回滚退回
	l.notifier.Publish("investment", notify.Payload{
		Type:        "investment",
		Action:      "reclaimed",
		RecipientId: application.ApplicantId,
		EntityId:    investment.Id,
		Metadata: map[string]interface{}{
			"application_id": application.Id,
			"amount":         investment.Amount,
		},
	})

	return &investment, nil
}
