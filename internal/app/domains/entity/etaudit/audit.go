package etaudit

import "time"

// Kind 审计类型
type Kind string

const (
	KindNotificationAccepted Kind = "notification_accepted"
	KindNotificationRejected Kind = "notification_rejected"
	KindFallbackInsert       Kind = "fallback_insert"
	KindManualCompletion     Kind = "manual_completion"
	KindRetryEnqueued        Kind = "retry_enqueued"
)

// ActorGateway 网关通知写入的审计记录使用的操作者
const ActorGateway = "payment_gateway"

// Entry 审计记录（领域对象）
type Entry struct {
	ID        int64
	Kind      Kind
	OrderID   string
	Actor     string
	Payload   map[string]interface{}
	CreatedAt time.Time
}

// NewEntry 创建审计记录
func NewEntry(kind Kind, orderID, actor string, payload map[string]interface{}) *Entry {
	if actor == "" {
		actor = ActorGateway
	}
	return &Entry{
		Kind:      kind,
		OrderID:   orderID,
		Actor:     actor,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}
