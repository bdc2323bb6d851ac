package donation

import (
	"hopely/internal/app/domains/services/svdonation"
	"hopely/internal/app/domains/services/svpayment"
)

// DonationHandler 捐赠 HTTP 处理器
type DonationHandler struct {
	donationService *svdonation.DonationService
	paymentService  *svpayment.PaymentService
}

// NewDonationHandler 创建捐赠处理器实例
func NewDonationHandler(donationService *svdonation.DonationService, paymentService *svpayment.PaymentService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		paymentService:  paymentService,
	}
}
