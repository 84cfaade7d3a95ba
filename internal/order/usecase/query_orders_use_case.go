package usecase

import (
	"context"

	"foodhub/internal/domain"
	dtoerrors "foodhub/internal/errors"
)

const maxListLimit = 200

type QueryOrdersUseCase struct {
	orders OrderReader
}

func NewQueryOrdersUseCase(orders OrderReader) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{orders: orders}
}

func (uc *QueryOrdersUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	if id == 0 {
		return nil, dtoerrors.NewValidationError("validation failed", dtoerrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
	}
	return uc.orders.FindByID(ctx, id)
}

func (uc *QueryOrdersUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var details []dtoerrors.ValidationDetail
	if filter.Status != nil && !filter.Status.Valid() {
		details = append(details, dtoerrors.ValidationDetail{Field: "status", Message: "unknown status"})
	}
	if filter.PaymentStatus != nil && !filter.PaymentStatus.Valid() {
		details = append(details, dtoerrors.ValidationDetail{Field: "paymentStatus", Message: "unknown paymentStatus"})
	}
	if filter.Limit < 0 || filter.Limit > maxListLimit {
		details = append(details, dtoerrors.ValidationDetail{Field: "limit", Message: "limit must be between 1 and 200"})
	}
	if filter.Offset < 0 {
		details = append(details, dtoerrors.ValidationDetail{Field: "offset", Message: "offset must not be negative"})
	}
	if len(details) > 0 {
		return nil, dtoerrors.NewValidationError("validation failed", details...)
	}

	orders, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
