package notify

import (
	"encoding/json"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/logger"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Payload 通知内容
type Payload struct {
	Id          string                 `json:"id"`
	Type        string                 `json:"type"`
	Action      string                 `json:"action"`
	RecipientId int64                  `json:"recipient_id"`
	EntityId    int64                  `json:"entity_id"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Publisher 通知发布接口。实现必须是尽力而为：
// 发布失败只记录日志，绝不影响触发它的业务事务。
type Publisher interface {
	Publish(topic string, payload Payload)
}

// AsyncPublisher 基于协程池的异步通知发布器
type AsyncPublisher struct {
	pool *ants.Pool
}

// NewAsyncPublisher 创建异步通知发布器
func NewAsyncPublisher(poolSize int) (*AsyncPublisher, error) {
	if poolSize <= 0 {
		poolSize = 16
	}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &AsyncPublisher{pool: pool}, nil
}

// Publish 异步发布通知，失败只记录日志
func (p *AsyncPublisher) Publish(topic string, payload Payload) {
	if payload.Id == "" {
		payload.Id = uuid.NewString()
	}

	err := p.pool.Submit(func() {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to marshal notification %s: %v", payload.Id, err)
			return
		}
		// 投递到外部通知通道由上层系统负责，这里记录完整事件
		logger.Info("Notification published: topic=%s payload=%s", topic, string(data))
	})
	if err != nil {
		logger.Error("Failed to submit notification %s to pool: %v", payload.Id, err)
	}
}

// Release 释放协程池
func (p *AsyncPublisher) Release() {
	p.pool.Release()
}
