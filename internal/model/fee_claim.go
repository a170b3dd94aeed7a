package model

import (
	"time"
)

// FeeClaim 手续费领取记录（存在即阻止同一计划再次领取，幂等标记）
type FeeClaim struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProgramId int64 `json:"program_id" gorm:"not null;uniqueIndex:idx_fee_claim_program_user"`
	ClaimedBy int64 `json:"claimed_by" gorm:"not null;uniqueIndex:idx_fee_claim_program_user"`

	Amount string `json:"amount" gorm:"type:numeric(78,18);not null"`
	TxHash string `json:"tx_hash" gorm:"uniqueIndex"`

	Status    FeeClaimStatus `json:"status" gorm:"default:'claimed'"`
	ClaimedAt time.Time      `json:"claimed_at"`
}

// TableName 自定义表名
func (FeeClaim) TableName() string {
	return "fee_claim"
}

// FeeClaimStatus 手续费领取状态
type FeeClaimStatus string

const (
	FeeClaimStatusClaimed FeeClaimStatus = "claimed" // 已领取
)
