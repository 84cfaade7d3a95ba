package domain

import "time"

type EventType string

const (
	EventConnected EventType = "connected"
	EventNewOrder  EventType = "new_order"
)

// Event is what the operator dashboards receive. It lives only as long as
// one broadcast.
type Event struct {
	Type  EventType      `json:"type"`
	Order *EventOrderRef `json:"order,omitempty"`
}

type EventOrderRef struct {
	ID           uint      `json:"id"`
	Total        float64   `json:"total"`
	DeliveryName *string   `json:"deliveryName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func ConnectedEvent() Event {
	return Event{Type: EventConnected}
}

func NewOrderEvent(o Order) Event {
	return Event{
		Type: EventNewOrder,
		Order: &EventOrderRef{
			ID:           o.ID,
			Total:        o.Total.InexactFloat64(),
			DeliveryName: o.Delivery.Name,
			CreatedAt:    o.CreatedAt.UTC(),
		},
	}
}
