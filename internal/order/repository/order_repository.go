package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodhub/internal/domain"
	"foodhub/internal/errors"
)

const defaultListLimit = 50

const orderColumns = `
	o.id, o.userId, o.total, o.discount, o.status, o.paymentStatus, o.paymentMethod,
	o.deliveryName, o.deliveryEmail, o.deliveryPhone, o.deliveryCity, o.deliveryDistrict,
	o.deliveryAddress, o.latitude, o.longitude, o.orderNote, o.version,
	o.createdAt, o.updatedAt, u.email, u.name`

type MySQLOrderRepository struct {
	db    *sql.DB
	items *MySQLOrderItemRepository
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		db:    db,
		items: NewMySQLOrderItemRepository(db),
	}
}

// CreateWithItems inserts the order and its items inside tx. The caller
// owns the transaction, so nothing is visible until it commits.
func (r *MySQLOrderRepository) CreateWithItems(ctx context.Context, tx *sql.Tx, order domain.Order, items []domain.OrderItem) (uint, error) {
	query := `
		INSERT INTO Orders (userId, total, discount, status, paymentStatus, paymentMethod,
		                    deliveryName, deliveryEmail, deliveryPhone, deliveryCity, deliveryDistrict,
		                    deliveryAddress, latitude, longitude, orderNote)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	d := order.Delivery
	result, err := tx.ExecContext(ctx, query,
		order.UserID, order.Total, order.Discount, order.Status, order.PaymentStatus, order.PaymentMethod,
		d.Name, d.Email, d.Phone, d.City, d.District,
		d.Address, d.Latitude, d.Longitude, order.OrderNote,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	orderID := uint(lastInsertID)

	for _, item := range items {
		item.OrderID = orderID
		if _, err := r.items.Insert(ctx, tx, item); err != nil {
			return 0, err
		}
	}

	return orderID, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM Orders o
		LEFT JOIN Users u ON u.id = o.userId
		WHERE o.id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// List returns orders newest first, each with its items.
func (r *MySQLOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		where = append(where, "o.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.PaymentStatus != nil {
		where = append(where, "o.paymentStatus = ?")
		args = append(args, *filter.PaymentStatus)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + orderColumns + `
		FROM Orders o
		LEFT JOIN Users u ON u.id = o.userId`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY o.createdAt DESC, o.id DESC\n\t\tLIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []uint
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// UpdateStatuses writes only the axes present in update and bumps the
// version. With ExpectedVersion set, a row that moved on is a conflict.
func (r *MySQLOrderRepository) UpdateStatuses(ctx context.Context, id uint, update domain.StatusUpdate) error {
	if update.Empty() {
		return fmt.Errorf("updating order %d: no status supplied", id)
	}

	var (
		set  []string
		args []interface{}
	)
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *update.Status)
	}
	if update.PaymentStatus != nil {
		set = append(set, "paymentStatus = ?")
		args = append(args, *update.PaymentStatus)
	}
	set = append(set, "version = version + 1")

	query := fmt.Sprintf(`UPDATE Orders SET %s WHERE id = ?`, strings.Join(set, ", "))
	args = append(args, id)
	if update.ExpectedVersion != nil {
		query += ` AND version = ?`
		args = append(args, *update.ExpectedVersion)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	return r.missOrConflict(ctx, id, update.ExpectedVersion)
}

// SetPaymentStatus changes the payment axis only. Fulfilment status is left
// as it is.
func (r *MySQLOrderRepository) SetPaymentStatus(ctx context.Context, id uint, status domain.PaymentStatus) error {
	query := `UPDATE Orders SET paymentStatus = ?, version = version + 1 WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func (r *MySQLOrderRepository) missOrConflict(ctx context.Context, id uint, expected *int) error {
	var current int
	err := r.db.QueryRowContext(ctx, `SELECT version FROM Orders WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return fmt.Errorf("checking order version: %w", err)
	}
	if expected != nil {
		return errors.NewConflictError(fmt.Sprintf("order %d is at version %d, expected %d", id, current, *expected))
	}
	return errors.NewConflictError(fmt.Sprintf("order %d was not updated", id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	d := &o.Delivery
	err := row.Scan(
		&o.ID, &o.UserID, &o.Total, &o.Discount, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&d.Name, &d.Email, &d.Phone, &d.City, &d.District,
		&d.Address, &d.Latitude, &d.Longitude, &o.OrderNote, &o.Version,
		&o.CreatedAt, &o.UpdatedAt, &o.AccountEmail, &o.AccountName,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
