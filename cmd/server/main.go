package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/commons"
	"foodhub/internal/config"
	"foodhub/internal/email"
	"foodhub/internal/eventbus"
	"foodhub/internal/infrastructure/async"
	"foodhub/internal/infrastructure/logger"
	"foodhub/internal/infrastructure/metrics"
	"foodhub/internal/infrastructure/mysql"
	"foodhub/internal/notification"
	"foodhub/internal/order"
	"foodhub/internal/payment"
	"foodhub/internal/product"
	"foodhub/internal/server"
)

// tokenTTL only matters for tokens minted by this process; sessions are
// issued elsewhere and validated here.
const tokenTTL = 12 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = commons.LoadConfig(path, cfg)
		if err != nil {
			log.Fatalf("loading config file: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "foodhub-api")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	bus := eventbus.New(zapLogger, m)
	dispatcher := async.NewDispatcher(cfg.Order.SideEffectTimeout, zapLogger, m)

	var mailer email.Sender = email.NewLogSender(zapLogger)
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	}

	catalog := product.NewModule(db)
	orderModule, err := order.NewModule(db, cfg, order.Dependencies{
		Catalog:     catalog,
		Events:      bus,
		SideEffects: dispatcher,
		Mailer:      mailer,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("building order module", zap.Error(err))
	}
	paymentModule := payment.NewModule(cfg.Payment, orderModule.Repository, zapLogger, m)
	streams := notification.NewStreamController(bus, cfg.Stream.KeepaliveInterval, cfg.Stream.BufferSize, zapLogger, m)

	router := server.NewRouter(server.RouterDeps{
		Orders:        orderModule.Controller,
		Stream:        streams,
		Payments:      paymentModule.Controller,
		JWT:           auth.NewJWTService(cfg.Auth.JWTSecret, tokenTTL),
		OperatorRoles: cfg.Auth.OperatorRoles,
		Metrics:       m,
		Gatherer:      reg,
		DB:            db,
		Logger:        zapLogger,
	})

	srv := server.New(cfg.Server.Port, router, zapLogger)
	srv.OnShutdown(streams.Close)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		zapLogger.Warn("side effects still running at exit", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
