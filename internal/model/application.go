package model

import (
	"time"
)

// Application 项目申请模型（计划内的一个项目）
type Application struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProgramId   int64 `json:"program_id" gorm:"not null;index"`
	ApplicantId int64 `json:"applicant_id" gorm:"not null;index"`

	// 基本信息
	Name    string `json:"name" gorm:"not null"`
	Content string `json:"content" gorm:"type:text"`

	// 资助信息
	FundingTarget     *string `json:"funding_target" gorm:"type:numeric(78,18)"` // 募资目标
	FundingSuccessful bool    `json:"funding_successful" gorm:"default:false"`   // 是否募资成功
	Price             string  `json:"price" gorm:"type:numeric(78,18);default:0"` // 里程碑总预算

	Status ApplicationStatus `json:"status" gorm:"default:'pending'"`
}

// TableName 自定义表名
func (Application) TableName() string {
	return "application"
}

// ApplicationStatus 申请状态
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"   // 待审核
	ApplicationStatusApproved  ApplicationStatus = "approved"  // 已通过
	ApplicationStatusRejected  ApplicationStatus = "rejected"  // 已拒绝
	ApplicationStatusCompleted ApplicationStatus = "completed" // 已完成
)
