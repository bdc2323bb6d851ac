package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/pkg/ginx"
	"hopely/internal/app/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic；handler 记录了错误但没有写响应时补一个 500
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(c.Request.Context(), "Panic recovered",
					"path", c.Request.URL.Path,
					"panic", r,
				)
				if !c.Writer.Written() {
					ginx.InternalError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}
}
