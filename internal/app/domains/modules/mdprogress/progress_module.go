package mdprogress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hopely/internal/common/model"
)

// PubSub 进度事件的发布订阅通道（由 infra/persistence/redis 实现）
type PubSub interface {
	Publish(ctx context.Context, channel string, message string) error
	SubscribeAndWait(ctx context.Context, channel string, timeout time.Duration, onSubscribed func() (bool, error)) (string, bool, error)
}

// ProgressChannel 短缺进度频道：donation:progress:{shortageID}
func ProgressChannel(shortageID string) string {
	return fmt.Sprintf("donation:progress:%s", shortageID)
}

// CompletedChannel 捐赠完成频道：donation:completed:{orderID}
func CompletedChannel(orderID string) string {
	return fmt.Sprintf("donation:completed:%s", orderID)
}

// ProgressModule 进度事件模块
// 职责：
// 1. 频道命名规则
// 2. 事件序列化
// 3. Smart Wait（等待捐赠完成）
type ProgressModule struct {
	pubsub PubSub
}

// NewProgressModule 创建进度事件模块
func NewProgressModule(pubsub PubSub) *ProgressModule {
	return &ProgressModule{pubsub: pubsub}
}

// PublishProgress 发布短缺进度事件
func (m *ProgressModule) PublishProgress(ctx context.Context, event model.DonationProgressEvent) error {
	return m.publish(ctx, ProgressChannel(event.ShortageID), event)
}

// PublishCompleted 发布捐赠完成事件
func (m *ProgressModule) PublishCompleted(ctx context.Context, event model.DonationCompletedEvent) error {
	return m.publish(ctx, CompletedChannel(event.OrderID), event)
}

func (m *ProgressModule) publish(ctx context.Context, channel string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}
	if err := m.pubsub.Publish(ctx, channel, string(payload)); err != nil {
		return fmt.Errorf("publish to %s failed: %w", channel, err)
	}
	return nil
}

// WaitForCompletion 等待订单完成（Smart Wait）
// 订阅确认后先执行 check（通常是回查 DB），避免订阅前已完成的通知丢失
// 超时返回 false, nil
func (m *ProgressModule) WaitForCompletion(ctx context.Context, orderID string, timeout time.Duration, check func() (bool, error)) (bool, error) {
	_, done, err := m.pubsub.SubscribeAndWait(ctx, CompletedChannel(orderID), timeout, check)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, err
	}
	return done, nil
}
