package admin

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Pending 待支付的捐赠
// GET /api/v1/admin/donations/pending
func (h *AdminHandler) Pending(c *gin.Context) {
	donations, err := h.adminService.ListPending(c.Request.Context())
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromDonationEntities(donations))
}
