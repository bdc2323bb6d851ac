package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Import 导入历史形态的短缺文档
// POST /api/v1/hospitals/:hospitalId/shortages/import
func (h *ShortageHandler) Import(c *gin.Context) {
	var req request.ImportShortagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	report, err := h.shortageService.ImportLegacyShortages(c.Request.Context(), c.Param("hospitalId"), req.Documents)
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromImportReport(report))
}
