package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/pkg/auth"
	"hopely/internal/app/pkg/ginx"
	"hopely/internal/app/pkg/logger"
)

// OperatorContextKey gin.Context 中的运维人员名称
const OperatorContextKey = "operator"

// OperatorOnly 校验 Bearer 运维令牌
func OperatorOnly(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			ginx.Error(c, http.StatusUnauthorized, "operator token required")
			c.Abort()
			return
		}

		operator, err := issuer.Verify(strings.TrimSpace(token))
		switch {
		case errors.Is(err, auth.ErrMissingSecret):
			_ = c.Error(err)
			ginx.Error(c, http.StatusServiceUnavailable, "admin access is not configured")
			c.Abort()
			return
		case errors.Is(err, auth.ErrNotOperator):
			ginx.Error(c, http.StatusForbidden, "operator role required")
			c.Abort()
			return
		case err != nil:
			ginx.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(OperatorContextKey, operator)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), operator))
		c.Next()
	}
}
