package response

// PaymentHashResponse 支付签名响应
type PaymentHashResponse struct {
	Hash       string `json:"hash"`
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// CheckoutFormResponse 收银台表单，字段名与网关表单一致
type CheckoutFormResponse struct {
	ActionURL  string `json:"action_url"`
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// NotifyAckResponse 网关通知应答
type NotifyAckResponse struct {
	Status string `json:"status"`
}

// ManualCompletionResponse 人工完成结果
type ManualCompletionResponse struct {
	Operator  string   `json:"operator"`
	Completed []string `json:"completed"`
	Count     int      `json:"count"`
}
