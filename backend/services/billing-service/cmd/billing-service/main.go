package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"greenvolt/backend/libs/logging"
	app "greenvolt/backend/services/billing-service/internal/app"
	"greenvolt/backend/services/billing-service/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize billing service", zap.Error(err))
	}
	defer application.Close()

	logger.Info("billing service started",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("price_cache", cfg.Redis.Addr != ""),
	)
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("billing service stopped with error", zap.Error(err))
	}
}
