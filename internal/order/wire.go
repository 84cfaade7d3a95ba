package order

import (
	"database/sql"

	"go.uber.org/zap"

	"foodhub/internal/config"
	"foodhub/internal/domain"
	"foodhub/internal/order/controller"
	orderrepo "foodhub/internal/order/repository"
	"foodhub/internal/order/service"
	"foodhub/internal/order/usecase"
)

// Dependencies are the process-wide collaborators the order module shares
// with the rest of the server.
type Dependencies struct {
	Catalog     usecase.ProductCatalog
	Events      usecase.EventPublisher
	SideEffects usecase.SideEffectDispatcher
	Mailer      usecase.CustomerMailer
}

// Module exposes the order controller and the store, which the payment
// module reuses for its callback writes.
type Module struct {
	Controller *controller.OrderController
	Repository *orderrepo.MySQLOrderRepository
}

func NewModule(db *sql.DB, cfg *config.Config, deps Dependencies, logger *zap.Logger) (*Module, error) {
	policy, err := domain.NewTransitionPolicy(cfg.Order.TransitionPolicy)
	if err != nil {
		return nil, err
	}

	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	creationSvc := service.NewCreationService(db, orderRepo, logger, cfg.Order.CreateTxTimeout)

	createUC := usecase.NewCreateOrderUseCase(
		creationSvc,
		orderRepo,
		deps.Catalog,
		deps.Events,
		deps.SideEffects,
		deps.Mailer,
		logger,
		cfg.Order.MaxRetryAttempts,
	)
	updateUC := usecase.NewUpdateStatusUseCase(
		orderRepo,
		orderRepo,
		policy,
		deps.SideEffects,
		deps.Mailer,
		logger,
	)
	queryUC := usecase.NewQueryOrdersUseCase(orderRepo)

	logger.Info("order module ready", zap.String("transitionPolicy", policy.Name()))

	return &Module{
		Controller: controller.NewOrderController(createUC, updateUC, queryUC, logger),
		Repository: orderRepo,
	}, nil
}
