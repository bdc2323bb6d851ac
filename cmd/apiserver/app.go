package main

import (
	"github.com/gin-gonic/gin"

	"hopely/internal/app/bootstrap"
	"hopely/internal/app/config"
	"hopely/internal/app/consumer"
	"hopely/internal/app/server/handlers/admin"
	"hopely/internal/app/server/handlers/donation"
	"hopely/internal/app/server/handlers/payment"
	"hopely/internal/app/server/handlers/shortage"
	"hopely/internal/app/server/routers"
)

// App HTTP Server 与进程内的重试消费者
type App struct {
	Engine        *gin.Engine
	RetryConsumer *consumer.NotifyRetryConsumer
	Container     *bootstrap.Container
}

// InitializeApp 组装依赖
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	c, cleanup, err := bootstrap.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := routers.SetupRoutes(routers.Handlers{
		Shortage: shortage.NewShortageHandler(c.ShortageService),
		Donation: donation.NewDonationHandler(c.DonationService, c.PaymentService),
		Payment:  payment.NewPaymentHandler(c.PaymentService),
		Admin:    admin.NewAdminHandler(c.AdminService),
	}, c.Issuer, map[string]routers.HealthCheck{
		"mysql": c.PingDB,
		"redis": c.Redis.Ping,
	}, c.Logger)

	return &App{
		Engine:        engine,
		RetryConsumer: c.NewRetryConsumer(),
		Container:     c,
	}, cleanup, nil
}
