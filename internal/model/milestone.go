package model

import (
	"time"
)

// Milestone 里程碑模型（按百分比分配申请预算，完成后释放对应资金）
type Milestone struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ApplicationId int64 `json:"application_id" gorm:"not null;index"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// 完成顺序（创建后不再重排，允许留空档）
	SortOrder int `json:"sort_order" gorm:"not null"`

	// 分配信息：percentage 为空视为 0；price = application.price * percentage / 100
	Percentage *string `json:"percentage" gorm:"type:numeric(78,18)"`
	Price      string  `json:"price" gorm:"type:numeric(78,18);default:0"`

	Status   MilestoneStatus `json:"status" gorm:"default:'pending'"`
	Deadline *time.Time      `json:"deadline"`
}

// TableName 自定义表名
func (Milestone) TableName() string {
	return "milestone"
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"   // 待完成
	MilestoneStatusSubmitted MilestoneStatus = "submitted" // 已提交待验收
	MilestoneStatusCompleted MilestoneStatus = "completed" // 已完成
	MilestoneStatusRejected  MilestoneStatus = "rejected"  // 已驳回
)
