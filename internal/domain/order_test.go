package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusReceived, OrderStatusPreparing, OrderStatusOnTheWay, OrderStatusDelivered, OrderStatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestPaymentStatus_Valid(t *testing.T) {
	assert.True(t, PaymentStatusPending.Valid())
	assert.True(t, PaymentStatusPaid.Valid())
	assert.True(t, PaymentStatusFailed.Valid())
	assert.False(t, PaymentStatus("refunded").Valid())
}

func TestOrder_NotificationEmail_PrefersDeliverySnapshot(t *testing.T) {
	order := Order{
		Delivery:     Delivery{Email: strPtr("delivery@example.com")},
		AccountEmail: strPtr("account@example.com"),
	}

	assert.Equal(t, "delivery@example.com", order.NotificationEmail())
}

func TestOrder_NotificationEmail_FallsBackToAccount(t *testing.T) {
	order := Order{
		Delivery:     Delivery{Email: strPtr("")},
		AccountEmail: strPtr("account@example.com"),
	}
	assert.Equal(t, "account@example.com", order.NotificationEmail())

	assert.Equal(t, "", Order{}.NotificationEmail())
}

func TestOrderItem_LineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: decimal.RequireFromString("29.99")}

	assert.True(t, decimal.RequireFromString("89.97").Equal(item.LineTotal()))
}

func TestStatusUpdate_Empty(t *testing.T) {
	assert.True(t, StatusUpdate{}.Empty())

	preparing := OrderStatusPreparing
	assert.False(t, StatusUpdate{Status: &preparing}.Empty())

	version := 3
	assert.True(t, StatusUpdate{ExpectedVersion: &version}.Empty())
}

func TestNewOrderEvent_WireShape(t *testing.T) {
	createdAt := time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC)
	order := Order{
		ID:        42,
		Total:     decimal.RequireFromString("150.00"),
		Delivery:  Delivery{Name: strPtr("Ayşe Yılmaz")},
		CreatedAt: createdAt,
	}

	data, err := json.Marshal(NewOrderEvent(order))
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"new_order","order":{"id":42,"total":150,"deliveryName":"Ayşe Yılmaz","createdAt":"2026-10-17T12:30:00Z"}}`, string(data))
}

func TestNewOrderEvent_NullDeliveryName(t *testing.T) {
	data, err := json.Marshal(NewOrderEvent(Order{ID: 7}))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"deliveryName":null`)
}

func TestConnectedEvent_WireShape(t *testing.T) {
	data, err := json.Marshal(ConnectedEvent())
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"connected"}`, string(data))
}
