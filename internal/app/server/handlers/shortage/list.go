package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// List 医院当前 ACTIVE 的短缺
// GET /api/v1/hospitals/:hospitalId/shortages
func (h *ShortageHandler) List(c *gin.Context) {
	shortages, err := h.shortageService.ListActiveShortages(c.Request.Context(), c.Param("hospitalId"))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromShortageEntities(shortages))
}

// Medicines 医院药品视图（需要量、库存、缺口）
// GET /api/v1/hospitals/:hospitalId/medicines
func (h *ShortageHandler) Medicines(c *gin.Context) {
	shortages, err := h.shortageService.HospitalMedicines(c.Request.Context(), c.Param("hospitalId"))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromMedicines(shortages))
}
