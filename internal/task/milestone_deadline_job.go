package task

import (
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/config"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logger"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/notify"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// MilestoneDeadlineJob 里程碑逾期监控任务。
// 发现刚刚逾期且仍待完成的里程碑时，通知已确认的投资人可以申请退回。
type MilestoneDeadlineJob struct {
	db       *gorm.DB
	config   *config.Config
	notifier notify.Publisher
}

// NewMilestoneDeadlineJob 创建里程碑逾期监控任务
func NewMilestoneDeadlineJob(db *gorm.DB, cfg *config.Config, notifier notify.Publisher) *MilestoneDeadlineJob {
	return &MilestoneDeadlineJob{
		db:       db,
		config:   cfg,
		notifier: notifier,
	}
}

// GetName 获取任务名称
func (j *MilestoneDeadlineJob) GetName() string {
	return "milestone_deadline_watch"
}

// GetSchedule 获取调度配置
func (j *MilestoneDeadlineJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *MilestoneDeadlineJob) Execute() {
	logger.Info("Starting milestone deadline watch task")

	now := time.Now()
	// 只处理上一个调度周期内新逾期的里程碑，避免重复通知
	windowStart := now.Add(-time.Duration(j.config.Task.Interval) * time.Second)

	var milestones []model.Milestone
	err := j.db.Where("status = ? AND deadline IS NOT NULL AND deadline > ? AND deadline <= ?",
		model.MilestoneStatusPending, windowStart, now).Find(&milestones).Error
	if err != nil {
		logger.Error("Failed to fetch overdue milestones: %v", err)
		return
	}

	notifiedCount := 0
	for _, milestone := range milestones {
		logger.Warn("Milestone %d of application %d missed deadline %s",
			milestone.Id, milestone.ApplicationId, milestone.Deadline.Format(time.RFC3339))

		var investorIds []int64
		err := j.db.Model(&model.Investment{}).
			Where("application_id = ? AND status = ?",
				milestone.ApplicationId, model.InvestmentStatusConfirmed).
			Distinct().Pluck("user_id", &investorIds).Error
		if err != nil {
			logger.Error("Failed to fetch investors of application %d: %v", milestone.ApplicationId, err)
			continue
		}

		for _, investorId := range investorIds {
			j.notifier.Publish("milestone", notify.Payload{
				Type:        "milestone",
				Action:      "deadline_missed",
				RecipientId: investorId,
				EntityId:    milestone.Id,
				Metadata: map[string]interface{}{
					"application_id": milestone.ApplicationId,
					"deadline":       milestone.Deadline.Format(time.RFC3339),
				},
			})
			notifiedCount++
		}
	}

	logger.Info("Milestone deadline watch completed. Sent %d notifications", notifiedCount)
}
