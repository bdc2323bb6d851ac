package admin

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/domains/services/svadmin"
	"hopely/internal/app/server/middlewares"
)

// AdminHandler 运维 HTTP 处理器
type AdminHandler struct {
	adminService *svadmin.AdminService
}

// NewAdminHandler 创建运维处理器实例
func NewAdminHandler(adminService *svadmin.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func operatorOf(c *gin.Context) string {
	return c.GetString(middlewares.OperatorContextKey)
}
