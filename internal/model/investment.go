package model

import (
	"time"
)

// Investment 投资记录模型
type Investment struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ApplicationId int64 `json:"application_id" gorm:"not null;index"`
	UserId        int64 `json:"user_id" gorm:"not null;index"`

	// 金额为十进制字符串
	Amount string `json:"amount" gorm:"type:numeric(78,18);not null"`

	// 投资时从投资人的等级分配复制而来
	Tier *string `json:"tier"`

	Status InvestmentStatus `json:"status" gorm:"default:'pending'"`

	// 链上交易哈希（已在外部校验，此处视为不透明字符串）。
	// 待确认投资没有哈希，存 NULL 以免撞唯一索引
	TxHash        *string    `json:"tx_hash" gorm:"uniqueIndex"`
	ReclaimTxHash *string    `json:"reclaim_tx_hash"`
	ReclaimedAt   *time.Time `json:"reclaimed_at"`
}

// TableName 自定义表名
func (Investment) TableName() string {
	return "investment"
}

// InvestmentStatus 投资状态
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"   // 待确认
	InvestmentStatusConfirmed InvestmentStatus = "confirmed" // 已确认
	InvestmentStatusRefunded  InvestmentStatus = "refunded"  // 已退款（终态）
)
