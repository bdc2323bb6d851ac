package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hopely/internal/app/bootstrap"
	"hopely/internal/app/config"
)

// 独立部署的通知重试消费者，apiserver 内也会启动一份
func main() {
	// 1. 加载配置
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化依赖
	c, cleanup, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	retryConsumer := c.NewRetryConsumer()

	// 3. 启动消费循环
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. 处理优雅退出
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		c.Logger.Info("Received shutdown signal, stopping consumer...")
		retryConsumer.Shutdown()
		cancel()
	}()

	if err := retryConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.Logger.Error("Consumer exited with error", "error", err)
	}
	c.Logger.Info("Notify retry consumer exited")
}
