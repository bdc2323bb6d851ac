package donation

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Create godoc
// @Summary      记录认捐
// @Description  按短缺的资金目标对账：超出剩余额度时截断为剩余额度，已筹满时返回 400 FundingClosedError
// @Description  同一 order_id 重复提交返回已有记录
// @Tags         donations
// @Accept       json
// @Produce      json
// @Param        request body request.CreatePledgeRequest true "认捐信息"
// @Success      200 {object} ginx.Response{data=response.PledgeResponse} "认捐成功"
// @Failure      400 {object} ginx.Response "参数错误或已筹满"
// @Failure      500 {object} ginx.Response "服务器错误"
// @Router       /donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	var req request.CreatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.donationService.RecordPledge(c.Request.Context(), req.ToPledgeFields())
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	checkoutURL := fmt.Sprintf("/api/v1/donations/%s/checkout", result.Donation.OrderID)
	resp := response.FromPledgeResult(result, checkoutURL)

	switch {
	case result.Replayed:
		ginx.SuccessWithMessage(c, "Donation already recorded", resp)
	case resp.Funding != nil && resp.Funding.WasCapped:
		ginx.SuccessWithMessage(c, "Donation amount adjusted to the remaining funding need", resp)
	default:
		ginx.SuccessWithMessage(c, "Donation recorded", resp)
	}
}
