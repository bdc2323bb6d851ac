package donation

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/domains/services/svdonation"
	"hopely/internal/app/pkg/ginx"
)

func toListQuery(q request.ListDonationsQuery) svdonation.ListQuery {
	return svdonation.ListQuery{
		Status:     q.Status,
		HospitalID: q.HospitalID,
		ShortageID: q.ShortageID,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}

// List 捐赠列表
// GET /api/v1/donations?status=all&page=1&limit=10
func (h *DonationHandler) List(c *gin.Context) {
	var q request.ListDonationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	donations, page, err := h.donationService.ListDonations(c.Request.Context(), toListQuery(q))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, &response.DonationListResponse{
		Donations:  response.FromDonationEntities(donations),
		Pagination: response.FromPagination(page),
	})
}

// Totals 按状态汇总
// GET /api/v1/donations/totals
func (h *DonationHandler) Totals(c *gin.Context) {
	var q request.ListDonationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	totals, err := h.donationService.AggregateTotals(c.Request.Context(), toListQuery(q))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromTotals(totals))
}

// ByShortage 短缺的捐赠与筹款进度
// GET /api/v1/donations/by-shortage/:shortageId
func (h *DonationHandler) ByShortage(c *gin.Context) {
	progress, err := h.donationService.GetShortageProgress(c.Request.Context(), c.Param("shortageId"))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromShortageProgress(progress))
}
