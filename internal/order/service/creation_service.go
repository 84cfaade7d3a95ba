package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderWriter interface {
	CreateWithItems(ctx context.Context, tx *sql.Tx, order domain.Order, items []domain.OrderItem) (uint, error)
}

type CreationService struct {
	db        TransactionManager
	orderRepo OrderWriter
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewCreationService(
	db TransactionManager,
	orderRepo OrderWriter,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CreationService {
	return &CreationService{
		db:        db,
		orderRepo: orderRepo,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// Create persists the order and its items atomically and returns the new
// id. Either everything is committed or nothing is.
func (s *CreationService) Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (uint, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	// MySQL ignores rollback after commit.
	defer tx.Rollback()

	orderID, err := s.orderRepo.CreateWithItems(txCtx, tx, order, items)
	if err != nil {
		s.logger.Error("failed to insert order", zap.Int("itemCount", len(items)), zap.Error(err))
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return 0, err
	}

	s.logger.Info("order committed",
		zap.Uint("orderId", orderID),
		zap.Int("itemCount", len(items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return orderID, nil
}
