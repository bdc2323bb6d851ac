package shortage

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/services/svshortage"
)

// HospitalUserHeader 医院侧操作者（医院鉴权接入前由前端透传）
const HospitalUserHeader = "X-Hospital-User"

// ShortageHandler 短缺 HTTP 处理器
type ShortageHandler struct {
	shortageService *svshortage.ShortageService
}

// NewShortageHandler 创建短缺处理器实例
func NewShortageHandler(shortageService *svshortage.ShortageService) *ShortageHandler {
	return &ShortageHandler{
		shortageService: shortageService,
	}
}

func operatorOf(c *gin.Context, fallback string) string {
	if user := c.GetHeader(HospitalUserHeader); user != "" {
		return user
	}
	return fallback
}
