package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/pkg/ginx"
)

// Cancel 取消短缺（软删除，幂等）
// DELETE /api/v1/hospitals/:hospitalId/shortages/:id
func (h *ShortageHandler) Cancel(c *gin.Context) {
	hospitalID := c.Param("hospitalId")
	shortageID := c.Param("id")

	already, err := h.shortageService.CancelShortage(c.Request.Context(), hospitalID, shortageID, operatorOf(c, hospitalID))
	if err != nil {
		ginx.Fail(c, err)
		return
	}

	message := "Shortage cancelled"
	if already {
		message = "Shortage already cancelled"
	}
	ginx.SuccessWithMessage(c, message, &response.CancelShortageResponse{
		ShortageID:       shortageID,
		Status:           string(etshortage.StatusCancelled),
		AlreadyCancelled: already,
	})
}
