package lmstfy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bitleak/lmstfy/client"
)

// 默认投递参数
const (
	DefaultTTL   uint32 = 86400 // 任务存活 1 天
	DefaultTries uint16 = 10
)

// Client Lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
}

// NewClient 创建 Lmstfy 客户端
func NewClient(host string, port int, namespace, token string) *Client {
	return &Client{
		cli:       client.NewLmstfyClient(host, port, namespace, token),
		namespace: namespace,
	}
}

// Publish 发布消息到队列，data 序列化为 JSON，delay 为延迟秒数
func (c *Client) Publish(ctx context.Context, queue string, data interface{}, delay uint32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal message failed: %w", err)
	}

	jobID, err := c.cli.Publish(queue, payload, DefaultTTL, DefaultTries, delay)
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}

// Message 队列消息结构
type Message struct {
	JobID string
	Data  json.RawMessage
}

// Consume 从队列中消费消息，超时无消息返回 nil, nil
// timeout: 等待超时时间（秒），ttr: 消息处理超时时间（秒），超过 TTR 未 ACK 会被重新投递
func (c *Client) Consume(ctx context.Context, queue string, timeout, ttr int) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	job, err := c.cli.Consume(queue, uint32(ttr), uint32(timeout))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	if job == nil {
		return nil, nil
	}

	return &Message{
		JobID: job.ID,
		Data:  json.RawMessage(job.Data),
	}, nil
}

// Ack 确认消息已处理
func (c *Client) Ack(ctx context.Context, queue, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}
