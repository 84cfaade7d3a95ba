package dto

import "github.com/shopspring/decimal"

// CreateOrderRequest is the storefront checkout body. Money fields accept
// JSON numbers or numeric strings.
type CreateOrderRequest struct {
	Total         *decimal.Decimal  `json:"total"`
	PaymentMethod *string           `json:"paymentMethod"`
	Address       DeliveryAddress   `json:"address"`
	Items         []CreateOrderItem `json:"items"`
	OrderNote     *string           `json:"orderNote"`
}

type DeliveryAddress struct {
	FullName    string   `json:"fullName"`
	Email       *string  `json:"email"`
	Phone       string   `json:"phone"`
	City        string   `json:"city"`
	District    string   `json:"district"`
	FullAddress string   `json:"fullAddress"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type CreateOrderItem struct {
	ID             int              `json:"id"`
	Quantity       int              `json:"quantity"`
	Price          *decimal.Decimal `json:"price"`
	SelectedOption *string          `json:"selectedOption"`
	ExtraText      *string          `json:"extraText"`
}

// UpdateOrderStatusRequest changes one or both status axes. Version, when
// sent, must match the stored version for the write to apply.
type UpdateOrderStatusRequest struct {
	OrderID       uint    `json:"orderId"`
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
	Version       *int    `json:"version"`
}
