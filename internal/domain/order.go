package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusPreparing, OrderStatusOnTheWay, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Delivery is the address snapshot taken when the order was placed. It is
// not linked to the customer's address book.
type Delivery struct {
	Name      *string
	Email     *string
	Phone     *string
	City      *string
	District  *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}

type Order struct {
	ID            uint
	UserID        *uint
	Total         decimal.Decimal
	Discount      decimal.Decimal
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod *string
	Delivery      Delivery
	OrderNote     *string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Read-side joins, empty on write.
	AccountEmail *string
	AccountName  *string
	Items        []OrderItem
}

// NotificationEmail is the address customer mail goes to: the delivery
// snapshot first, the account email otherwise.
func (o Order) NotificationEmail() string {
	if o.Delivery.Email != nil && *o.Delivery.Email != "" {
		return *o.Delivery.Email
	}
	if o.AccountEmail != nil {
		return *o.AccountEmail
	}
	return ""
}

type OrderItem struct {
	ID             uint
	OrderID        uint
	ProductID      int
	Quantity       int
	Price          decimal.Decimal
	SelectedOption *string
	ExtraText      *string

	ProductName     string
	ProductCategory string
}

// LineTotal is the snapshot price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusUpdate carries the axes an operator chose to change. Nil fields are
// left untouched. ExpectedVersion, when set, turns the write into a
// compare-and-set.
type StatusUpdate struct {
	Status          *OrderStatus
	PaymentStatus   *PaymentStatus
	ExpectedVersion *int
}

func (u StatusUpdate) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil
}

// OrderFilter narrows an order listing. Zero Limit means the store default.
type OrderFilter struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	Limit         int
	Offset        int
}
