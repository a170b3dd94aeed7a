package task

import (
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/config"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logger"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/money"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FundingFinalizeJob 募资结算任务。
// 募资窗口结束后，把达到募资目标的申请标记为募资成功。
type FundingFinalizeJob struct {
	db       *gorm.DB
	config   *config.Config
	notifier notify.Publisher
}

// NewFundingFinalizeJob 创建募资结算任务
func NewFundingFinalizeJob(db *gorm.DB, cfg *config.Config, notifier notify.Publisher) *FundingFinalizeJob {
	return &FundingFinalizeJob{
		db:       db,
		config:   cfg,
		notifier: notifier,
	}
}

// GetName 获取任务名称
func (j *FundingFinalizeJob) GetName() string {
	return "funding_finalize"
}

// GetSchedule 获取调度配置
func (j *FundingFinalizeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *FundingFinalizeJob) Execute() {
	logger.Info("Starting funding finalize task")

	now := time.Now()

	// 查找募资已结束的资助计划
	var programs []model.Program
	err := j.db.Where("type = ? AND funding_end_date IS NOT NULL AND funding_end_date <= ?",
		model.ProgramTypeFunding, now).Find(&programs).Error
	if err != nil {
		logger.Error("Failed to fetch programs for finalizing: %v", err)
		return
	}

	finalizedCount := 0
	for _, program := range programs {
		var applications []model.Application
		err := j.db.Where("program_id = ? AND funding_successful = ? AND funding_target IS NOT NULL",
			program.Id, false).Find(&applications).Error
		if err != nil {
			logger.Error("Failed to fetch applications for program %d: %v", program.Id, err)
			continue
		}

		for _, application := range applications {
			if j.finalizeApplication(&application) {
				finalizedCount++
			}
		}
	}

	logger.Info("Funding finalize task completed. Finalized %d applications", finalizedCount)
}

// finalizeApplication 结算单个申请，达到募资目标则标记为成功。
// 与投资写入共用申请行锁，聚合与标记在同一事务内完成。
func (j *FundingFinalizeJob) finalizeApplication(application *model.Application) bool {
	target, err := money.ParseNullable(application.FundingTarget)
	if err != nil {
		logger.Error("Failed to parse funding target of application %d: %v", application.Id, err)
		return false
	}
	if target.IsZero() {
		return false
	}

	marked := false
	txErr := func() error {
		tx := j.db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		var locked model.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, application.Id).Error; err != nil {
			tx.Rollback()
			return err
		}
		if locked.FundingSuccessful {
			tx.Rollback()
			return nil
		}

		var sum string
		if err := tx.Model(&model.Investment{}).
			Where("application_id = ? AND status = ?", locked.Id, model.InvestmentStatusConfirmed).
			Select("COALESCE(SUM(amount), 0)::text").Scan(&sum).Error; err != nil {
			tx.Rollback()
			return err
		}
		confirmed, err := money.Parse(sum)
		if err != nil {
			tx.Rollback()
			return err
		}

		if confirmed.LessThan(target) {
			tx.Rollback()
			return nil
		}

		if err := tx.Model(&locked).Update("funding_successful", true).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		marked = true
		return nil
	}()
	if txErr != nil {
		logger.Error("Failed to finalize application %d: %v", application.Id, txErr)
		return false
	}

	if marked {
		logger.Info("Application %d reached funding target %s", application.Id, target.String())
		j.notifier.Publish("application", notify.Payload{
			Type:        "application",
			Action:      "funding_successful",
			RecipientId: application.ApplicantId,
			EntityId:    application.Id,
			Metadata: map[string]interface{}{
				"funding_target": target.String(),
			},
		})
	}
	return marked
}
