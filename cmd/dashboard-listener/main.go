package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"foodhub/internal/infrastructure/logger"
	"foodhub/internal/notifyclient"
)

func main() {
	cfg, err := notifyclient.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, "foodhub-dashboard-listener")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := notifyclient.ExecRunner{}
	cache := notifyclient.NewOrderCache(cfg.ServerURL, cfg.Token, cfg.CacheLimit, nil)
	if err := cache.Refresh(ctx); err != nil {
		zapLogger.Warn("initial order list fetch failed", zap.Error(err))
	}

	effects := []notifyclient.Effect{
		cache,
		notifyclient.NewSoundEffect(cfg.SoundEnabled, cfg.PlayerCommand, runner),
		notifyclient.NewDesktopNotifier(cfg.Permission, cfg.NotifyCommand, runner),
	}

	client := notifyclient.NewClient(*cfg, effects, zapLogger)

	zapLogger.Info("dashboard listener starting",
		zap.String("server", cfg.ServerURL),
		zap.Bool("sound", cfg.SoundEnabled),
		zap.String("permission", string(cfg.Permission)),
	)

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("dashboard listener stopped", zap.Error(err))
		return
	}
	zapLogger.Info("dashboard listener stopped", zap.Int("cachedOrders", len(cache.Orders())))
}
