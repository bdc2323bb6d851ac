package request

import "github.com/shopspring/decimal"

// PaymentHashRequest 支付签名请求
type PaymentHashRequest struct {
	MerchantID string          `json:"merchant_id" example:"1221149"`
	OrderID    string          `json:"order_id" binding:"required" example:"ORDER_1728912000_ab12"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"1000.00"`
	Currency   string          `json:"currency" example:"LKR"`
}

// CompleteDonationsRequest 人工完成请求，order_id 与 all 二选一
type CompleteDonationsRequest struct {
	OrderID string `json:"order_id" example:"ORDER_1728912000_ab12"`
	All     bool   `json:"all"`
}
