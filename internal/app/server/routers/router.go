package routers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hopely/internal/app/pkg/auth"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/app/server/handlers/admin"
	"hopely/internal/app/server/handlers/donation"
	"hopely/internal/app/server/handlers/payment"
	"hopely/internal/app/server/handlers/shortage"
	"hopely/internal/app/server/middlewares"
)

// HealthCheck 依赖探活，返回 nil 表示可用
type HealthCheck func(ctx context.Context) error

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Shortage *shortage.ShortageHandler
	Donation *donation.DonationHandler
	Payment  *payment.PaymentHandler
	Admin    *admin.AdminHandler
}

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	handlers Handlers,
	issuer *auth.TokenIssuer,
	checks map[string]HealthCheck,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", health(checks))

	v1 := r.Group("/api/v1")
	{
		hospitals := v1.Group("/hospitals/:hospitalId")
		{
			hospitals.POST("/shortages", handlers.Shortage.Create)
			hospitals.GET("/shortages", handlers.Shortage.List)
			hospitals.POST("/shortages/import", handlers.Shortage.Import)
			hospitals.DELETE("/shortages/:id", handlers.Shortage.Cancel)
			hospitals.GET("/medicines", handlers.Shortage.Medicines)
		}

		v1.GET("/shortages/:id", handlers.Shortage.Get)

		donations := v1.Group("/donations")
		{
			donations.POST("", handlers.Donation.Create)
			donations.GET("", handlers.Donation.List)
			donations.GET("/totals", handlers.Donation.Totals)
			donations.GET("/by-shortage/:shortageId", handlers.Donation.ByShortage)
			donations.GET("/:orderId", handlers.Donation.Get)
			donations.GET("/:orderId/checkout", handlers.Donation.Checkout)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/hash", handlers.Payment.Hash)
			payments.POST("/notify", handlers.Payment.Notify)
		}

		adminGroup := v1.Group("/admin", middlewares.OperatorOnly(issuer))
		{
			adminGroup.GET("/donations/pending", handlers.Admin.Pending)
			adminGroup.POST("/donations/complete", handlers.Admin.Complete)
		}
	}

	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"service":      "hopely",
			"dependencies": deps,
		})
	}
}
