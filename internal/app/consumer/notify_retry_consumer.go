package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"hopely/internal/app/infra/mq/lmstfy"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/common/model"
)

// Queue 重试队列的消费端（由 infra/mq/lmstfy 实现）
type Queue interface {
	Consume(ctx context.Context, queue string, timeout, ttr int) (*lmstfy.Message, error)
	Ack(ctx context.Context, queue, jobID string) error
}

// RetryProcessor 重新处理一条通知（由 svpayment 实现）
type RetryProcessor interface {
	ProcessRetry(ctx context.Context, job *model.NotificationRetryJob) error
}

// Config 消费者配置
type Config struct {
	QueueName    string        // 队列名称
	Timeout      int           // 拉取消息超时（秒）
	TTR          int           // Time-To-Run（秒）
	PollInterval time.Duration // 出错后的等待间隔
}

// NotifyRetryConsumer 支付通知重试消费者
// 职责：
// 1. 从 lmstfy 队列拉取存储失败时入队的网关通知
// 2. 调用 PaymentService 重新校验并完成捐赠
// 3. 成功后 ACK，失败不 ACK 等待 TTR 重投
type NotifyRetryConsumer struct {
	queue     Queue
	processor RetryProcessor
	cfg       Config
	closing   *atomic.Bool
	wg        sync.WaitGroup
	logger    logger.Logger
}

// NewNotifyRetryConsumer 创建消费者实例
func NewNotifyRetryConsumer(queue Queue, processor RetryProcessor, cfg Config, logger logger.Logger) *NotifyRetryConsumer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3
	}
	if cfg.TTR <= 0 {
		cfg.TTR = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &NotifyRetryConsumer{
		queue:     queue,
		processor: processor,
		cfg:       cfg,
		closing:   atomic.NewBool(false),
		logger:    logger,
	}
}

// Start 启动消费循环，ctx 取消或调用 Shutdown 后返回
func (c *NotifyRetryConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	defer c.wg.Done()

	c.logger.InfoContext(ctx, "Notify retry consumer started",
		"queue", c.cfg.QueueName,
		"timeout", c.cfg.Timeout,
		"ttr", c.cfg.TTR,
	)

	for !c.closing.Load() {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Notify retry consumer stopped")
			return ctx.Err()
		default:
		}

		if err := c.ConsumeOne(ctx); err != nil {
			c.logger.ErrorContext(ctx, "Failed to consume retry job", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(c.cfg.PollInterval):
			}
		}
	}

	c.logger.InfoContext(ctx, "Notify retry consumer stopped")
	return nil
}

// Shutdown 停止拉取新任务并等待当前任务处理完
func (c *NotifyRetryConsumer) Shutdown() {
	c.closing.Store(true)
	c.wg.Wait()
}

// ConsumeOne 拉取并处理一条任务，队列为空时直接返回
func (c *NotifyRetryConsumer) ConsumeOne(ctx context.Context) error {
	msg, err := c.queue.Consume(ctx, c.cfg.QueueName, c.cfg.Timeout, c.cfg.TTR)
	if err != nil {
		return fmt.Errorf("consume message failed: %w", err)
	}
	if msg == nil {
		return nil
	}

	job, err := parseJob(msg.Data)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to parse retry job", "job_id", msg.JobID, "error", err)
		// 解析失败，直接 ACK
		_ = c.queue.Ack(ctx, c.cfg.QueueName, msg.JobID)
		return err
	}

	if job.RequestID != "" {
		ctx = logger.WithRequestID(ctx, job.RequestID)
	}

	if err := c.processor.ProcessRetry(ctx, job); err != nil {
		c.logger.WarnContext(ctx, "Retry job failed, waiting for redelivery",
			"job_id", msg.JobID,
			"order_id", job.OrderID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}

	if err := c.queue.Ack(ctx, c.cfg.QueueName, msg.JobID); err != nil {
		c.logger.ErrorContext(ctx, "Failed to ack retry job", "job_id", msg.JobID, "error", err)
		return err
	}

	c.logger.InfoContext(ctx, "Retry job processed",
		"job_id", msg.JobID,
		"order_id", job.OrderID,
	)
	return nil
}

func parseJob(data json.RawMessage) (*model.NotificationRetryJob, error) {
	var job model.NotificationRetryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal retry job failed: %w", err)
	}
	if job.OrderID == "" && job.Fields["order_id"] == "" {
		return nil, fmt.Errorf("order_id is required")
	}
	if len(job.Fields) == 0 {
		return nil, fmt.Errorf("fields are required")
	}
	return &job, nil
}
