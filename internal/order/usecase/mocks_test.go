package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/async"
)

type mockOrderCreator struct {
	CreateFunc func(ctx context.Context, order domain.Order, items []domain.OrderItem) (uint, error)
	calls      int
}

func (m *mockOrderCreator) Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (uint, error) {
	m.calls++
	return m.CreateFunc(ctx, order, items)
}

type mockOrderReader struct {
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Order, error)
	ListFunc     func(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderReader) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return m.ListFunc(ctx, filter)
}

type mockStatusWriter struct {
	UpdateStatusesFunc func(ctx context.Context, id uint, update domain.StatusUpdate) error
}

func (m *mockStatusWriter) UpdateStatuses(ctx context.Context, id uint, update domain.StatusUpdate) error {
	return m.UpdateStatusesFunc(ctx, id, update)
}

type mockProductCatalog struct {
	GetProductsByIDsFunc func(ctx context.Context, ids []int) ([]domain.Product, []int, error)
}

func (m *mockProductCatalog) GetProductsByIDs(ctx context.Context, ids []int) ([]domain.Product, []int, error) {
	return m.GetProductsByIDsFunc(ctx, ids)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Emit(payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
}

// syncDispatcher runs tasks inline and, like the real dispatcher, keeps
// their errors to itself.
type syncDispatcher struct {
	names   []string
	taskErr []error
	closed  bool
}

func (d *syncDispatcher) Go(ctx context.Context, name string, task async.Task, fields ...zap.Field) error {
	if d.closed {
		return async.ErrDispatcherClosed
	}
	d.names = append(d.names, name)
	d.taskErr = append(d.taskErr, task(ctx))
	return nil
}

type mockMailer struct {
	SendOrderConfirmationFunc func(ctx context.Context, to string, order domain.Order) error
	SendStatusUpdateFunc      func(ctx context.Context, to string, order domain.Order) error
}

func (m *mockMailer) SendOrderConfirmation(ctx context.Context, to string, order domain.Order) error {
	return m.SendOrderConfirmationFunc(ctx, to, order)
}

func (m *mockMailer) SendStatusUpdate(ctx context.Context, to string, order domain.Order) error {
	return m.SendStatusUpdateFunc(ctx, to, order)
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.OrderStatus) *domain.OrderStatus { return &s }

func paymentPtr(s domain.PaymentStatus) *domain.PaymentStatus { return &s }
