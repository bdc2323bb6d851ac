package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopely/internal/app/infra/mq/lmstfy"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/common/model"
)

type stubQueue struct {
	mu         sync.Mutex
	messages   []*lmstfy.Message
	consumeErr error
	acked      []string
}

func (q *stubQueue) Consume(ctx context.Context, queue string, timeout, ttr int) (*lmstfy.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.consumeErr != nil {
		return nil, q.consumeErr
	}
	if len(q.messages) == 0 {
		return nil, nil
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

func (q *stubQueue) Ack(ctx context.Context, queue, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, jobID)
	return nil
}

func (q *stubQueue) Acked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

type stubProcessor struct {
	mu   sync.Mutex
	err  error
	jobs []*model.NotificationRetryJob
}

func (p *stubProcessor) ProcessRetry(ctx context.Context, job *model.NotificationRetryJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return p.err
}

func jobMessage(t *testing.T, id string, job model.NotificationRetryJob) *lmstfy.Message {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return &lmstfy.Message{JobID: id, Data: data}
}

func sampleJob() model.NotificationRetryJob {
	return model.NotificationRetryJob{
		RequestID: "req-1",
		OrderID:   "ORDER_1",
		Fields:    map[string]string{"order_id": "ORDER_1", "status_code": "2"},
		Attempt:   1,
	}
}

func newConsumer(q Queue, p RetryProcessor) *NotifyRetryConsumer {
	return NewNotifyRetryConsumer(q, p, Config{QueueName: "payment_notify_retry", PollInterval: 10 * time.Millisecond}, logger.NewNopLogger())
}

func TestConsumeOne_AcksOnSuccess(t *testing.T) {
	q := &stubQueue{}
	q.messages = []*lmstfy.Message{jobMessage(t, "job-1", sampleJob())}
	p := &stubProcessor{}

	require.NoError(t, newConsumer(q, p).ConsumeOne(context.Background()))

	assert.Equal(t, []string{"job-1"}, q.Acked())
	require.Len(t, p.jobs, 1)
	assert.Equal(t, "ORDER_1", p.jobs[0].OrderID)
	assert.Equal(t, "2", p.jobs[0].Fields["status_code"])
}

func TestConsumeOne_NoAckOnFailure(t *testing.T) {
	q := &stubQueue{}
	q.messages = []*lmstfy.Message{jobMessage(t, "job-1", sampleJob())}
	p := &stubProcessor{err: errors.New("database is locked")}

	err := newConsumer(q, p).ConsumeOne(context.Background())
	assert.Error(t, err)
	assert.Empty(t, q.Acked())
}

func TestConsumeOne_AcksMalformedJob(t *testing.T) {
	q := &stubQueue{}
	q.messages = []*lmstfy.Message{
		{JobID: "bad-json", Data: json.RawMessage(`"not an object"`)},
		jobMessage(t, "no-fields", model.NotificationRetryJob{OrderID: "ORDER_1"}),
	}
	p := &stubProcessor{}
	c := newConsumer(q, p)

	assert.Error(t, c.ConsumeOne(context.Background()))
	assert.Error(t, c.ConsumeOne(context.Background()))
	assert.Equal(t, []string{"bad-json", "no-fields"}, q.Acked())
	assert.Empty(t, p.jobs)
}

func TestConsumeOne_EmptyQueue(t *testing.T) {
	q := &stubQueue{}
	p := &stubProcessor{}

	assert.NoError(t, newConsumer(q, p).ConsumeOne(context.Background()))
	assert.Empty(t, q.Acked())
}

func TestStart_StopsOnCancel(t *testing.T) {
	q := &stubQueue{}
	q.messages = []*lmstfy.Message{jobMessage(t, "job-1", sampleJob())}
	p := &stubProcessor{}
	c := newConsumer(q, p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(q.Acked()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestShutdown_StopsLoop(t *testing.T) {
	q := &stubQueue{consumeErr: errors.New("connection refused")}
	c := newConsumer(q, &stubProcessor{})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	c.Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
