package bootstrap

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hopely/internal/app/config"
	"hopely/internal/app/consumer"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdfunding"
	"hopely/internal/app/domains/modules/mdpayment"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/modules/mdshortage"
	"hopely/internal/app/domains/repo/rpaudit"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/domains/repo/rpshortage"
	"hopely/internal/app/domains/services/svadmin"
	"hopely/internal/app/domains/services/svdonation"
	"hopely/internal/app/domains/services/svpayment"
	"hopely/internal/app/domains/services/svshortage"
	"hopely/internal/app/infra/mq/lmstfy"
	"hopely/internal/app/infra/persistence/mysql"
	"hopely/internal/app/infra/persistence/redis"
	"hopely/internal/app/pkg/auth"
	"hopely/internal/app/pkg/idgen"
	"hopely/internal/app/pkg/keylock"
	"hopely/internal/app/pkg/logger"
)

// Container 进程内共享的基础设施与服务
type Container struct {
	Config *config.Config
	Logger logger.Logger

	DB     *gorm.DB
	Redis  *redis.PubSubClient
	Lmstfy *lmstfy.Client
	Issuer *auth.TokenIssuer

	ShortageService *svshortage.ShortageService
	DonationService *svdonation.DonationService
	PaymentService  *svpayment.PaymentService
	AdminService    *svadmin.AdminService
}

// New 按配置初始化全部依赖，返回的 cleanup 负责释放连接
func New(cfg *config.Config) (*Container, func(), error) {
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger failed: %w", err)
	}
	if err := idgen.Init(cfg.App.NodeID); err != nil {
		return nil, nil, fmt.Errorf("init id generator failed: %w", err)
	}

	db, err := mysql.Open(cfg.MySQL.DSN, mysql.Options{
		MaxOpenConns: cfg.MySQL.MaxOpenConns,
		LogLevel:     cfg.App.LogLevel,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := mysql.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	appLogger.Info("Database connected")

	redisClient, err := redis.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("init redis failed: %w", err)
	}
	appLogger.Info("Redis connected", "addr", cfg.Redis.Addr)

	lmstfyClient := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	appLogger.Info("Lmstfy client initialized", "host", cfg.Lmstfy.Host, "namespace", cfg.Lmstfy.Namespace)

	if cfg.Payment.MerchantSecret == "" {
		appLogger.Warn("Merchant secret is not configured, signing and production verification will fail")
	}

	// Repository 层
	shortageRepo := rpshortage.NewShortageRepository(db)
	donationRepo := rpdonation.NewDonationRepository(db)
	auditRepo := rpaudit.NewAuditRepository(db)

	// Module 层
	shortageModule := mdshortage.NewShortageModule(shortageRepo)
	donationModule := mddonation.NewDonationModule(donationRepo, auditRepo)
	fundingModule := mdfunding.NewFundingModule(donationRepo, keylock.New())
	progressModule := mdprogress.NewProgressModule(redisClient)

	// Service 层
	paymentService := svpayment.NewPaymentService(
		mdpayment.NewSigner(cfg.Payment.MerchantSecret),
		mdpayment.NewVerifier(mdpayment.VerifierConfig{
			MerchantSecret:    cfg.Payment.MerchantSecret,
			Sandbox:           cfg.Payment.Sandbox,
			SuccessStatusCode: cfg.Payment.SuccessStatusCode,
			BypassSignature:   cfg.Payment.BypassSignature,
			TestOrderPrefix:   cfg.Payment.TestOrderPrefix,
		}),
		donationModule,
		progressModule,
		lmstfyClient,
		svpayment.Config{
			MerchantID: cfg.Payment.MerchantID,
			Currency:   cfg.Payment.Currency,
			Sandbox:    cfg.Payment.Sandbox,
			ReturnURL:  cfg.Payment.ReturnURL,
			CancelURL:  cfg.Payment.CancelURL,
			NotifyURL:  cfg.Payment.NotifyURL,
			Country:    cfg.Payment.Country,
			RetryQueue: cfg.Lmstfy.NotifyRetryQueue,
		},
		appLogger,
	)

	c := &Container{
		Config:          cfg,
		Logger:          appLogger,
		DB:              db,
		Redis:           redisClient,
		Lmstfy:          lmstfyClient,
		Issuer:          auth.NewTokenIssuer(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL),
		ShortageService: svshortage.NewShortageService(shortageModule, appLogger),
		DonationService: svdonation.NewDonationService(fundingModule, donationModule, shortageModule, progressModule, appLogger),
		PaymentService:  paymentService,
		AdminService:    svadmin.NewAdminService(donationModule, progressModule, appLogger),
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
		_ = appLogger.Sync()
	}
	return c, cleanup, nil
}

// NewRetryConsumer 通知重试消费者
func (c *Container) NewRetryConsumer() *consumer.NotifyRetryConsumer {
	return consumer.NewNotifyRetryConsumer(c.Lmstfy, c.PaymentService, consumer.Config{
		QueueName: c.Config.Lmstfy.NotifyRetryQueue,
		Timeout:   3,
		TTR:       30,
	}, c.Logger)
}

// PingDB 数据库探活
func (c *Container) PingDB(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
