package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	dtoerrors "foodhub/internal/errors"
)

type CreateOrderUseCase struct {
	creator          OrderCreator
	orders           OrderReader
	catalog          ProductCatalog
	events           EventPublisher
	sideEffects      SideEffectDispatcher
	mailer           CustomerMailer
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCreateOrderUseCase(
	creator OrderCreator,
	orders OrderReader,
	catalog ProductCatalog,
	events EventPublisher,
	sideEffects SideEffectDispatcher,
	mailer CustomerMailer,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		creator:          creator,
		orders:           orders,
		catalog:          catalog,
		events:           events,
		sideEffects:      sideEffects,
		mailer:           mailer,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// CreateOrder persists order with items and only then announces it to the
// operator dashboards and mails the customer. Neither announcement can fail
// the call once the order is committed.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, order domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	uc.logger.Info("create order started", zap.Int("itemCount", len(items)))

	if err := uc.checkProducts(ctx, items); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusReceived
	order.PaymentStatus = domain.PaymentStatusPending

	var orderID uint
	err := withDeadlockRetry(ctx, uc.logger, uc.maxRetryAttempts, func() error {
		id, err := uc.creator.Create(ctx, order, items)
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := uc.logger.With(zap.Uint("orderId", orderID))
	created, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		// Committed already; answer with what was written.
		logger.Warn("reloading created order failed", zap.Error(err))
		order.ID = orderID
		order.CreatedAt = time.Now().UTC()
		order.Items = items
		created = &order
	}

	uc.events.Emit(domain.NewOrderEvent(*created))
	uc.sendConfirmation(ctx, logger, *created)

	logger.Info("order created", zap.String("total", created.Total.StringFixed(2)))
	return created, nil
}

func (uc *CreateOrderUseCase) checkProducts(ctx context.Context, items []domain.OrderItem) error {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	_, notFound, err := uc.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(notFound) == 0 {
		return nil
	}

	missing := make(map[int]struct{}, len(notFound))
	for _, id := range notFound {
		missing[id] = struct{}{}
	}

	var details []dtoerrors.ValidationDetail
	for i, item := range items {
		if _, ok := missing[item.ProductID]; ok {
			details = append(details, dtoerrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].id", i),
				Message: fmt.Sprintf("product %d is not available", item.ProductID),
			})
		}
	}
	return dtoerrors.NewValidationError("validation failed", details...)
}

func (uc *CreateOrderUseCase) sendConfirmation(ctx context.Context, logger *zap.Logger, order domain.Order) {
	to := order.NotificationEmail()
	if to == "" {
		logger.Info("no customer email, confirmation skipped")
		return
	}

	err := uc.sideEffects.Go(ctx, "order_confirmation_email", func(ctx context.Context) error {
		return uc.mailer.SendOrderConfirmation(ctx, to, order)
	}, zap.Uint("orderId", order.ID))
	if err != nil {
		logger.Warn("confirmation email not dispatched", zap.Error(err))
	}
}
