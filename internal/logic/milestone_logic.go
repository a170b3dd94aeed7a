package logic

import (
	"errors"
	"fmt"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/money"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MilestoneLogic 里程碑业务逻辑
type MilestoneLogic struct {
	db       *gorm.DB
	notifier notify.Publisher
}

// NewMilestoneLogic 创建里程碑业务逻辑
func NewMilestoneLogic(db *gorm.DB, notifier notify.Publisher) *MilestoneLogic {
	return &MilestoneLogic{db: db, notifier: notifier}
}

// ValidateAndPrice 校验百分比分配并计算里程碑金额。
// 把 newPercentage 代入 changedId 对应的里程碑后求和：
// 单项必须落在 [0, 100]，总和不得超过 100（缺失的百分比按 0 计）。
// 通过后返回 applicationPrice * newPercentage / 100。
func ValidateAndPrice(milestones []model.Milestone, changedId int64, newPercentage, applicationPrice string) (money.Amount, error) {
	changed, err := money.Parse(newPercentage)
	if err != nil {
		return money.Amount{}, domainerr.InvariantViolation("里程碑百分比格式无效: %s", newPercentage)
	}
	if changed.IsNegative() || changed.GreaterThan(money.MustParse("100")) {
		return money.Amount{}, domainerr.InvariantViolation("里程碑百分比必须在 0 到 100 之间: %s", newPercentage)
	}

	found := false
	total := money.Zero()
	for _, m := range milestones {
		pct := money.Zero()
		if m.Id == changedId {
			found = true
			pct = changed
		} else if m.Percentage != nil {
			pct, err = money.Parse(*m.Percentage)
			if err != nil {
				return money.Amount{}, fmt.Errorf("里程碑 %d 的百分比无法解析: %w", m.Id, err)
			}
		}
		total = total.Add(pct)
	}
	if !found {
		return money.Amount{}, domainerr.NotFound("里程碑不存在")
	}

	if total.GreaterThan(money.MustParse("100")) {
		return money.Amount{}, domainerr.InvariantViolation("里程碑百分比总和不能超过 100，当前为 %s", total.String())
	}

	price, err := money.Parse(applicationPrice)
	if err != nil {
		return money.Amount{}, fmt.Errorf("申请预算无法解析: %w", err)
	}
	return price.PercentOf(changed), nil
}

// UpdateMilestonePercentage 更新里程碑百分比并重新计算金额。
// 校验与写入在同一事务中完成，申请行加锁以串行化同一申请下的并发修改。
func (m *MilestoneLogic) UpdateMilestonePercentage(milestoneId, actorId int64, newPercentage string) (*model.Milestone, error) {
	tx := m.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var milestone model.Milestone
	if err := tx.First(&milestone, milestoneId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("里程碑不存在")
		}
		return nil, err
	}

	// 锁住申请行，保证同一申请的百分比校验串行执行
	var application model.Application
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, milestone.ApplicationId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("申请不存在")
		}
		return nil, err
	}

	if application.ApplicantId != actorId {
		tx.Rollback()
		return nil, domainerr.Unauthorized("只有申请人可以修改里程碑")
	}
	if application.Status == model.ApplicationStatusCompleted {
		tx.Rollback()
		return nil, domainerr.WindowClosed("申请已完成，里程碑不可再修改")
	}

	var milestones []model.Milestone
	if err := tx.Where("application_id = ?", milestone.ApplicationId).
		Order("sort_order ASC").Find(&milestones).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	price, err := ValidateAndPrice(milestones, milestoneId, newPercentage, application.Price)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"percentage": newPercentage,
		"price":      price.String(),
	}
	if err := tx.Model(&milestone).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("更新里程碑失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	milestone.Percentage = &newPercentage
	milestone.Price = price.String()
	return &milestone, nil
}

// UpdateMilestoneStatus 更新里程碑状态。
// 完成顺序约束在写入事务内重新校验：只有更小 sort_order 的里程碑
// 全部完成后，当前里程碑才能被标记为完成。
func (m *MilestoneLogic) UpdateMilestoneStatus(milestoneId, actorId int64, newStatus model.MilestoneStatus) (*model.Milestone, error) {
	tx := m.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var milestone model.Milestone
	if err := tx.First(&milestone, milestoneId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerr.NotFound("里程碑不存在")
		}
		return nil, err
	}

	// 同一申请下的并发状态提交通过申请行锁串行化
	var application model.Application
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, milestone.ApplicationId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var program model.Program
	if err := tx.First(&program, application.ProgramId).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := checkStatusTransition(&milestone, &application, &program, actorId, newStatus); err != nil {
		tx.Rollback()
		return nil, err
	}

	if newStatus == model.MilestoneStatusCompleted {
		// 顺序约束必须在本事务内核对，避免并发提交绕过
		var incomplete int64
		if err := tx.Model(&model.Milestone{}).
			Where("application_id = ? AND sort_order < ? AND status <> ?",
				milestone.ApplicationId, milestone.SortOrder, model.MilestoneStatusCompleted).
			Count(&incomplete).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if incomplete > 0 {
			tx.Rollback()
			return nil, domainerr.InvariantViolation("存在 %d 个未完成的前置里程碑，不能完成当前里程碑", incomplete)
		}
	}

	if err := tx.Model(&milestone).Update("status", newStatus).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("更新里程碑状态失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	milestone.Status = newStatus
	m.notifyStatusChange(&milestone, &application, &program)
	return &milestone, nil
}

// checkStatusTransition 校验状态迁移与操作者权限
func checkStatusTransition(milestone *model.Milestone, application *model.Application, program *model.Program, actorId int64, newStatus model.MilestoneStatus) error {
	switch newStatus {
	case model.MilestoneStatusSubmitted:
		// 申请人提交完成证明
		if actorId != application.ApplicantId {
			return domainerr.Unauthorized("只有申请人可以提交里程碑")
		}
		if milestone.Status != model.MilestoneStatusPending && milestone.Status != model.MilestoneStatusRejected {
			return domainerr.InvariantViolation("里程碑当前状态 %s 不允许提交", milestone.Status)
		}
	case model.MilestoneStatusCompleted, model.MilestoneStatusRejected:
		// 主办方验收或驳回
		if actorId != program.CreatorId {
			return domainerr.Unauthorized("只有计划主办方可以验收里程碑")
		}
		if milestone.Status != model.MilestoneStatusSubmitted {
			return domainerr.InvariantViolation("里程碑当前状态 %s 不允许验收", milestone.Status)
		}
	default:
		return domainerr.InvariantViolation("不支持的里程碑状态: %s", newStatus)
	}
	return nil
}

// notifyStatusChange 通知相关方里程碑状态变化，尽力而为
func (m *MilestoneLogic) notifyStatusChange(milestone *model.Milestone, application *model.Application, program *model.Program) {
	recipient := application.ApplicantId
	if milestone.Status == model.MilestoneStatusSubmitted {
		recipient = program.CreatorId
	}
	m.notifier.Publish("milestone", notify.Payload{
		Type:        "milestone",
		Action:      string(milestone.Status),
		RecipientId: recipient,
		EntityId:    milestone.Id,
		Metadata: map[string]interface{}{
			"application_id": application.Id,
			"program_id":     program.Id,
		},
	})
}

// GetApplicationMilestones 获取申请的里程碑列表，按完成顺序排序
func (m *MilestoneLogic) GetApplicationMilestones(applicationId int64) ([]model.Milestone, error) {
	var milestones []model.Milestone
	if err := m.db.Where("application_id = ?", applicationId).
		Order("sort_order ASC").Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("获取里程碑列表失败: %w", err)
	}
	return milestones, nil
}
