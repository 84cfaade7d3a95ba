package domain

import "github.com/shopspring/decimal"

// Product is the live catalog row. Orders never read Price from here after
// placement; OrderItem keeps its own copy.
type Product struct {
	ID       int
	Name     string
	Category string
	Price    decimal.Decimal
	IsActive bool
}
