package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	dtoerrors "foodhub/internal/errors"
)

type UpdateStatusUseCase struct {
	orders      OrderReader
	writer      StatusWriter
	policy      domain.TransitionPolicy
	sideEffects SideEffectDispatcher
	mailer      CustomerMailer
	logger      *zap.Logger
}

func NewUpdateStatusUseCase(
	orders OrderReader,
	writer StatusWriter,
	policy domain.TransitionPolicy,
	sideEffects SideEffectDispatcher,
	mailer CustomerMailer,
	logger *zap.Logger,
) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		orders:      orders,
		writer:      writer,
		policy:      policy,
		sideEffects: sideEffects,
		mailer:      mailer,
		logger:      logger,
	}
}

// UpdateStatus applies the supplied axes of update to the order and returns
// it as stored afterwards. The status email goes out after the write and
// its outcome never reaches the caller.
func (uc *UpdateStatusUseCase) UpdateStatus(ctx context.Context, orderID uint, update domain.StatusUpdate) (*domain.Order, error) {
	if err := validateStatusUpdate(orderID, update); err != nil {
		return nil, err
	}

	logger := uc.logger.With(zap.Uint("orderId", orderID))

	current, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.Check(*current, update); err != nil {
		logger.Warn("status change refused", zap.String("policy", uc.policy.Name()), zap.Error(err))
		return nil, dtoerrors.NewConflictError(err.Error())
	}

	// A policy verdict only holds for the version it was checked against.
	if update.ExpectedVersion == nil && uc.policy.Name() != domain.PolicyPermissive {
		checked := current.Version
		update.ExpectedVersion = &checked
	}

	if err := uc.writer.UpdateStatuses(ctx, orderID, update); err != nil {
		return nil, err
	}

	updated, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("order status updated",
		zap.String("status", string(updated.Status)),
		zap.String("paymentStatus", string(updated.PaymentStatus)),
		zap.Int("version", updated.Version),
	)

	if update.Status != nil && *update.Status != domain.OrderStatusReceived {
		uc.sendStatusEmail(ctx, logger, *updated)
	}

	return updated, nil
}

func (uc *UpdateStatusUseCase) sendStatusEmail(ctx context.Context, logger *zap.Logger, order domain.Order) {
	to := order.NotificationEmail()
	if to == "" {
		logger.Info("no customer email, status email skipped")
		return
	}

	err := uc.sideEffects.Go(ctx, "order_status_email", func(ctx context.Context) error {
		return uc.mailer.SendStatusUpdate(ctx, to, order)
	}, zap.Uint("orderId", order.ID), zap.String("status", string(order.Status)))
	if err != nil {
		logger.Warn("status email not dispatched", zap.Error(err))
	}
}

func validateStatusUpdate(orderID uint, update domain.StatusUpdate) error {
	var details []dtoerrors.ValidationDetail

	if orderID == 0 {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
	}
	if update.Empty() {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "status",
			Message: "status or paymentStatus is required",
		})
	}
	if update.Status != nil && !update.Status.Valid() {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", *update.Status),
		})
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "paymentStatus",
			Message: fmt.Sprintf("unknown paymentStatus %q", *update.PaymentStatus),
		})
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion < 0 {
		details = append(details, dtoerrors.ValidationDetail{
			Field:   "version",
			Message: "version must not be negative",
		})
	}

	if len(details) > 0 {
		return dtoerrors.NewValidationError("validation failed", details...)
	}
	return nil
}
