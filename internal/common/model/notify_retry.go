package model

// NotificationRetryJob 支付通知重试消息
// 用于 notify 接口 → notify_consumer 的消息传递，Fields 为网关原始表单
type NotificationRetryJob struct {
	RequestID  string            `json:"request_id"`  // 原始请求的 request_id（链路追踪）
	OrderID    string            `json:"order_id"`    // 订单号
	Fields     map[string]string `json:"fields"`      // 网关 POST 的全部表单字段
	Attempt    int               `json:"attempt"`     // 入队次数
	ReceivedAt int64             `json:"received_at"` // 首次收到通知的时间戳（Unix timestamp）
}
