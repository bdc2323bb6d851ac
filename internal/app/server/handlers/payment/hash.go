package payment

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Hash godoc
// @Summary      生成支付签名
// @Description  hash = UPPER(MD5(merchant_id + order_id + amount(两位小数) + currency + UPPER(MD5(secret))))
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body request.PaymentHashRequest true "签名参数"
// @Success      200 {object} ginx.Response{data=response.PaymentHashResponse} "签名成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      500 {object} ginx.Response "商户密钥未配置"
// @Router       /payments/hash [post]
func (h *PaymentHandler) Hash(c *gin.Context) {
	var req request.PaymentHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	hash, err := h.paymentService.IssuePaymentHash(c.Request.Context(), req.MerchantID, req.OrderID, req.Amount, req.Currency)
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, &response.PaymentHashResponse{
		Hash:       hash.Hash,
		MerchantID: hash.MerchantID,
		OrderID:    hash.OrderID,
		Amount:     hash.Amount,
		Currency:   hash.Currency,
	})
}
