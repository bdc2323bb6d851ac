package donation

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取捐赠详情
// @Description  wait > 0 时等待网关确认（Smart Wait），超时仍为 pending 返回 code=3001
// @Tags         donations
// @Produce      json
// @Param        orderId path string true "订单号"
// @Param        wait query int false "等待秒数（最大 30）"
// @Success      200 {object} ginx.Response{data=response.DonationResponse} "查询成功"
// @Failure      404 {object} ginx.Response "捐赠不存在"
// @Router       /donations/{orderId} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	orderID := c.Param("orderId")

	var q request.GetDonationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	donation, err := h.donationService.GetDonation(c.Request.Context(), orderID, q.Wait)
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	if q.Wait > 0 && donation.Status == etdonation.StatusPending {
		pollURL := fmt.Sprintf("/api/v1/donations/%s", donation.OrderID)
		ginx.Processing(c, donation.OrderID, string(donation.Status), pollURL)
		return
	}

	ginx.Success(c, response.FromDonationEntity(donation))
}

// Checkout 收银台表单
// GET /api/v1/donations/:orderId/checkout
func (h *DonationHandler) Checkout(c *gin.Context) {
	form, err := h.paymentService.BuildCheckoutForm(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromCheckoutForm(form))
}
