package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// PublishedMessage 记录一次发布
type PublishedMessage struct {
	Channel string
	Payload string
}

// FakePubSub 内存版 Pub/Sub
type FakePubSub struct {
	mu          sync.Mutex
	subscribers map[string][]chan string
	published   []PublishedMessage

	// PublishErr 非空时 Publish 直接返回该错误
	PublishErr error
}

// NewFakePubSub 创建内存 Pub/Sub
func NewFakePubSub() *FakePubSub {
	return &FakePubSub{subscribers: make(map[string][]chan string)}
}

func (f *FakePubSub) Publish(_ context.Context, channel string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.published = append(f.published, PublishedMessage{Channel: channel, Payload: message})
	for _, ch := range f.subscribers[channel] {
		select {
		case ch <- message:
		default:
		}
	}
	return nil
}

func (f *FakePubSub) SubscribeAndWait(ctx context.Context, channel string, timeout time.Duration, onSubscribed func() (bool, error)) (string, bool, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan string, 1)
	f.mu.Lock()
	f.subscribers[channel] = append(f.subscribers[channel], ch)
	f.mu.Unlock()
	defer f.unsubscribe(channel, ch)

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
	case msg := <-ch:
		return msg, true, nil
	case <-timeoutCtx.Done():
		return "", false, timeoutCtx.Err()
	}
}

func (f *FakePubSub) unsubscribe(channel string, ch chan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subscribers[channel]
	for i, c := range subs {
		if c == ch {
			f.subscribers[channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// Subscribers 当前订阅 channel 的等待者数量
func (f *FakePubSub) Subscribers(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[channel])
}

// Published 按发布顺序返回 channel 上的消息
func (f *FakePubSub) Published(channel string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.published {
		if m.Channel == channel {
			out = append(out, m.Payload)
		}
	}
	return out
}

// QueuedJob 记录一次入队
type QueuedJob struct {
	ID    string
	Queue string
	Data  json.RawMessage
	Delay uint32
}

// FakeQueue 内存版重试队列
type FakeQueue struct {
	mu   sync.Mutex
	jobs []QueuedJob

	// PublishErr 非空时 Publish 直接返回该错误
	PublishErr error
}

// ErrQueueUnavailable 测试用的队列故障
var ErrQueueUnavailable = errors.New("queue unavailable")

func (q *FakeQueue) Publish(_ context.Context, queue string, data interface{}, delay uint32) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.PublishErr != nil {
		return "", q.PublishErr
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("job-%d", len(q.jobs)+1)
	q.jobs = append(q.jobs, QueuedJob{ID: id, Queue: queue, Data: payload, Delay: delay})
	return id, nil
}

// Jobs 已入队的任务
func (q *FakeQueue) Jobs() []QueuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]QueuedJob(nil), q.jobs...)
}
