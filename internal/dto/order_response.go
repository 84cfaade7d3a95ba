package dto

import (
	"time"

	"foodhub/internal/domain"
)

type OrderResponse struct {
	ID               uint                `json:"id"`
	UserID           *uint               `json:"userId"`
	Total            float64             `json:"total"`
	Discount         float64             `json:"discount"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"paymentStatus"`
	PaymentMethod    *string             `json:"paymentMethod"`
	DeliveryName     *string             `json:"deliveryName"`
	DeliveryEmail    *string             `json:"deliveryEmail"`
	DeliveryPhone    *string             `json:"deliveryPhone"`
	DeliveryCity     *string             `json:"deliveryCity"`
	DeliveryDistrict *string             `json:"deliveryDistrict"`
	DeliveryAddress  *string             `json:"deliveryAddress"`
	Latitude         *float64            `json:"latitude"`
	Longitude        *float64            `json:"longitude"`
	OrderNote        *string             `json:"orderNote"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	User             *OrderUserDTO       `json:"user"`
	Items            []OrderItemResponse `json:"items"`
}

type OrderUserDTO struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

type OrderItemResponse struct {
	ID             uint            `json:"id"`
	ProductID      int             `json:"productId"`
	Quantity       int             `json:"quantity"`
	Price          float64         `json:"price"`
	SelectedOption *string         `json:"selectedOption"`
	ExtraText      *string         `json:"extraText"`
	Product        OrderProductDTO `json:"product"`
}

type OrderProductDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type OrderListResponse struct {
	TraceID string          `json:"traceId"`
	Count   int             `json:"count"`
	Orders  []OrderResponse `json:"orders"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	OrderID   uint      `json:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		UserID:           o.UserID,
		Total:            o.Total.InexactFloat64(),
		Discount:         o.Discount.InexactFloat64(),
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentMethod:    o.PaymentMethod,
		DeliveryName:     o.Delivery.Name,
		DeliveryEmail:    o.Delivery.Email,
		DeliveryPhone:    o.Delivery.Phone,
		DeliveryCity:     o.Delivery.City,
		DeliveryDistrict: o.Delivery.District,
		DeliveryAddress:  o.Delivery.Address,
		Latitude:         o.Delivery.Latitude,
		Longitude:        o.Delivery.Longitude,
		OrderNote:        o.OrderNote,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            make([]OrderItemResponse, 0, len(o.Items)),
	}

	if o.AccountEmail != nil || o.AccountName != nil {
		resp.User = &OrderUserDTO{Email: o.AccountEmail, Name: o.AccountName}
	}

	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Price:          item.Price.InexactFloat64(),
			SelectedOption: item.SelectedOption,
			ExtraText:      item.ExtraText,
			Product: OrderProductDTO{
				ID:       item.ProductID,
				Name:     item.ProductName,
				Category: item.ProductCategory,
			},
		})
	}

	return resp
}
