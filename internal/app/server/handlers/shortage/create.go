package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Create godoc
// @Summary      登记药品短缺
// @Tags         shortages
// @Accept       json
// @Produce      json
// @Param        hospitalId path string true "医院ID"
// @Param        request body request.CreateShortageRequest true "短缺信息"
// @Success      200 {object} ginx.Response{data=response.ShortageResponse}
// @Failure      400 {object} ginx.Response "参数错误"
// @Router       /hospitals/{hospitalId}/shortages [post]
func (h *ShortageHandler) Create(c *gin.Context) {
	hospitalID := c.Param("hospitalId")

	var req request.CreateShortageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	spec := req.ToSpec()
	if spec.CreatedBy == "" {
		spec.CreatedBy = operatorOf(c, hospitalID)
	}

	shortage, err := h.shortageService.CreateShortage(c.Request.Context(), hospitalID, spec)
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.SuccessWithMessage(c, "Shortage created", response.FromShortageEntity(shortage))
}
