package model

import (
	"time"
)

// Program 资助计划模型
type Program struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string      `json:"name" gorm:"not null" binding:"required"`
	Description string      `json:"description" gorm:"type:text"`
	Type        ProgramType `json:"type" gorm:"default:'standard'"`

	// 状态（手动设置，派生阶段见 phase 包）
	Status ProgramStatus `json:"status" gorm:"default:'draft'"`

	// 时间窗口（全部可选，未配置时阶段不可推导）
	ApplicationStartDate *time.Time `json:"application_start_date"`
	ApplicationEndDate   *time.Time `json:"application_end_date"`
	FundingStartDate     *time.Time `json:"funding_start_date"`
	FundingEndDate       *time.Time `json:"funding_end_date"`

	// 资助信息（金额一律为十进制字符串，避免浮点误差）
	MaxFundingAmount *string          `json:"max_funding_amount" gorm:"type:numeric(78,18)"`
	FeePercentage    *string          `json:"fee_percentage" gorm:"type:numeric(78,18)"`
	FundingCondition FundingCondition `json:"funding_condition" gorm:"default:'none'"`

	// 创建者（主办方）
	CreatorId int64 `json:"creator_id" gorm:"not null;index"`
}

// TableName 自定义表名
func (Program) TableName() string {
	return "program"
}

// ProgramType 计划类型
type ProgramType string

const (
	ProgramTypeFunding  ProgramType = "funding"  // 资助计划
	ProgramTypeStandard ProgramType = "standard" // 普通计划
)

// ProgramStatus 计划状态
type ProgramStatus string

const (
	ProgramStatusDraft           ProgramStatus = "draft"            // 草稿
	ProgramStatusPublished       ProgramStatus = "published"        // 已发布
	ProgramStatusPaymentRequired ProgramStatus = "payment_required" // 待支付
	ProgramStatusClosed          ProgramStatus = "closed"           // 已关闭
	ProgramStatusCompleted       ProgramStatus = "completed"        // 已完成
	ProgramStatusCancelled       ProgramStatus = "cancelled"        // 已取消
	ProgramStatusRejected        ProgramStatus = "rejected"         // 已拒绝
)

// FundingCondition 投资准入条件
type FundingCondition string

const (
	FundingConditionNone FundingCondition = "none" // 无限制
	FundingConditionTier FundingCondition = "tier" // 需要投资等级
)

// DefaultFeePercentage 未设置手续费比例时的默认值
const DefaultFeePercentage = "3"
