package payment

import (
	"go.uber.org/zap"

	"foodhub/internal/config"
	"foodhub/internal/infrastructure/metrics"
	"foodhub/internal/payment/controller"
	"foodhub/internal/payment/gateway"
	"foodhub/internal/payment/service"
)

type Module struct {
	Controller *controller.PaymentController
	Service    *service.PaymentService
}

// NewModule wires the checkout flow on top of the order store. The store
// is shared with the order module so callback writes go through the same
// versioned update.
func NewModule(cfg config.PaymentConfig, orders service.OrderStore, logger *zap.Logger, m *metrics.Metrics) *Module {
	client := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Timeout:   cfg.Timeout,
	}, logger)

	svc := service.NewPaymentService(orders, client, service.Settings{
		CallbackURL: cfg.CallbackURL,
		SuccessURL:  cfg.SuccessURL,
		FailureURL:  cfg.FailureURL,
		Currency:    cfg.Currency,
		Locale:      cfg.Locale,
	}, logger, m)

	if cfg.APIKey == "" || cfg.SecretKey == "" {
		logger.Warn("payment gateway credentials are empty, checkout requests will be rejected by the gateway")
	}

	return &Module{
		Controller: controller.NewPaymentController(svc, logger),
		Service:    svc,
	}
}
