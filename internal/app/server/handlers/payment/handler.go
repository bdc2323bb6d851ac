package payment

import (
	"hopely/internal/app/domains/services/svpayment"
)

// PaymentHandler 支付网关 HTTP 处理器
type PaymentHandler struct {
	paymentService *svpayment.PaymentService
}

// NewPaymentHandler 创建支付处理器实例
func NewPaymentHandler(paymentService *svpayment.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}
