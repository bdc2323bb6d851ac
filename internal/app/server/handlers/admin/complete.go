package admin

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/request"
	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/ginx"
)

// Complete godoc
// @Summary      人工完成捐赠
// @Description  网关通知丢失时由运维人员将 pending 捐赠标记为 completed，order_id 与 all 必须二选一
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body request.CompleteDonationsRequest true "完成范围"
// @Success      200 {object} ginx.Response{data=response.ManualCompletionResponse} "完成成功"
// @Failure      400 {object} ginx.Response "参数错误或捐赠非 pending"
// @Failure      401 {object} ginx.Response "未授权"
// @Failure      404 {object} ginx.Response "捐赠不存在"
// @Router       /admin/donations/complete [post]
func (h *AdminHandler) Complete(c *gin.Context) {
	var req request.CompleteDonationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	operator := operatorOf(c)
	ctx := c.Request.Context()

	var completed []string
	switch {
	case req.OrderID != "" && req.All:
		ginx.Fail(c, errorx.Validation("order_id and all are mutually exclusive"))
		return
	case req.OrderID != "":
		if err := h.adminService.CompleteOrder(ctx, operator, req.OrderID); err != nil {
			ginx.Fail(c, err)
			return
		}
		completed = []string{req.OrderID}
	case req.All:
		ids, err := h.adminService.CompleteAllPending(ctx, operator)
		if err != nil {
			ginx.Fail(c, err)
			return
		}
		completed = ids
	default:
		ginx.Fail(c, errorx.Validation("order_id or all is required", errorx.ErrorDetail{
			Path: "order_id",
			Info: "specify order_id or set all to true",
		}))
		return
	}

	if completed == nil {
		completed = []string{}
	}
	ginx.Success(c, &response.ManualCompletionResponse{
		Operator:  operator,
		Completed: completed,
		Count:     len(completed),
	})
}
