package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSubClient Redis Pub/Sub 客户端封装
type PubSubClient struct {
	rdb *redis.Client
}

// NewPubSubClient 创建 Pub/Sub 客户端，支持密码认证
func NewPubSubClient(addr, password string, db int) (*PubSubClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &PubSubClient{rdb: rdb}, nil
}

// SubscribeAndWait 订阅 channel 并等待一条消息，支持超时控制
// 订阅确认后先调用 onSubscribed，返回 true 时不再等待（用于订阅前已完成的情况）
// 超时返回 context.DeadlineExceeded
func (c *PubSubClient) SubscribeAndWait(ctx context.Context, channel string, timeout time.Duration, onSubscribed func() (bool, error)) (string, bool, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sub := c.rdb.Subscribe(timeoutCtx, channel)
	defer sub.Close()

	// 第一条为订阅确认
	if _, err := sub.Receive(timeoutCtx); err != nil {
		return "", false, fmt.Errorf("subscribe %s failed: %w", channel, err)
	}

	if onSubscribed != nil {
		done, err := onSubscribed()
		if err != nil {
			return "", false, err
		}
		if done {
			return "", true, nil
		}
	}

	select {
	case msg := <-sub.Channel():
		return msg.Payload, true, nil
	case <-timeoutCtx.Done():
		return "", false, timeoutCtx.Err()
	}
}

// Publish 向指定 channel 发布消息
func (c *PubSubClient) Publish(ctx context.Context, channel string, message string) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}

// Ping 健康检查
func (c *PubSubClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接
func (c *PubSubClient) Close() error {
	return c.rdb.Close()
}
