package usecase

import (
	"context"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/async"
)

type OrderCreator interface {
	Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (uint, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type StatusWriter interface {
	UpdateStatuses(ctx context.Context, id uint, update domain.StatusUpdate) error
}

type ProductCatalog interface {
	GetProductsByIDs(ctx context.Context, ids []int) (found []domain.Product, notFoundIDs []int, err error)
}

type EventPublisher interface {
	Emit(payload any)
}

type SideEffectDispatcher interface {
	Go(ctx context.Context, name string, task async.Task, fields ...zap.Field) error
}

type CustomerMailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order domain.Order) error
	SendStatusUpdate(ctx context.Context, to string, order domain.Order) error
}
