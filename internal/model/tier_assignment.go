package model

import (
	"time"
)

// TierAssignment 投资等级分配（由计划配置流程创建，本核心只读）
type TierAssignment struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProgramId int64  `json:"program_id" gorm:"not null;uniqueIndex:idx_tier_program_user"`
	UserId    int64  `json:"user_id" gorm:"not null;uniqueIndex:idx_tier_program_user"`
	Tier      string `json:"tier" gorm:"not null"`

	// 该投资人在此计划内单个申请的投资上限
	MaxInvestmentAmount string `json:"max_investment_amount" gorm:"type:numeric(78,18);not null"`
}

// TableName 自定义表名
func (TierAssignment) TableName() string {
	return "tier_assignment"
}
