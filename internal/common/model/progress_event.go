package model

// DonationProgressEvent 捐赠进度事件
// 发布到 donation:progress:{shortage_id}，前端进度条订阅
type DonationProgressEvent struct {
	ShortageID   string `json:"shortage_id"`
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`        // pending / completed
	Amount       string `json:"amount"`        // 两位小数字符串
	CurrentTotal string `json:"current_total"` // 含 pending 的累计金额
	OccurredAt   int64  `json:"occurred_at"`
}

// DonationCompletedEvent 捐赠完成事件
// 发布到 donation:completed:{order_id}，用于 Smart Wait
type DonationCompletedEvent struct {
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id"`
	CompletedAt int64  `json:"completed_at"`
}
