package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/apimodel/response"
	"hopely/internal/app/pkg/ginx"
)

// Notify 网关异步通知（application/x-www-form-urlencoded）
// POST /api/v1/payments/notify
// 校验失败同样返回 200，避免网关无限重发；仅在既未落库也未能入队时返回 5xx
func (h *PaymentHandler) Notify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		ginx.BadRequest(c, "malformed notification body")
		return
	}

	form := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}

	if _, err := h.paymentService.HandleNotification(c.Request.Context(), form); err != nil {
		ginx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, &response.NotifyAckResponse{Status: "ok"})
}
