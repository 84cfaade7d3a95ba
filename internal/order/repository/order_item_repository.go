package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodhub/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

// Insert writes item with the price it was submitted with. That price is
// never recomputed from the catalog afterwards.
func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	query := `
		INSERT INTO OrderItems (orderId, productId, quantity, price, selectedOption, extraText)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.Price, item.SelectedOption, item.ExtraText)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// FindByOrderIDs loads the items of several orders at once, in insertion
// order, with the product's current name and category for display.
func (r *MySQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[uint][]domain.OrderItem{}, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT oi.id, oi.orderId, oi.productId, oi.quantity, oi.price,
		       oi.selectedOption, oi.extraText,
		       COALESCE(p.name, ''), COALESCE(p.category, '')
		FROM OrderItems oi
		LEFT JOIN Product p ON p.id = oi.productId
		WHERE oi.orderId IN (%s)
		ORDER BY oi.orderId, oi.id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uint][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&item.SelectedOption, &item.ExtraText,
			&item.ProductName, &item.ProductCategory,
		); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
