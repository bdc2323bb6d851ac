package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取短缺详情
// @Description  捐赠页展示用，包含资金目标
// @Tags         shortages
// @Produce      json
// @Param        id path string true "短缺ID（UUID）"
// @Success      200 {object} ginx.Response{data=response.ShortageResponse} "查询成功"
// @Failure      404 {object} ginx.Response "短缺不存在"
// @Router       /shortages/{id} [get]
func (h *ShortageHandler) Get(c *gin.Context) {
	shortage, err := h.shortageService.GetShortage(c.Request.Context(), c.Param("id"))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	ginx.Success(c, response.FromShortageEntity(shortage))
}
