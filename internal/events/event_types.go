package events

import (
	"time"

	"github.com/spec-kit/pharmashop/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventUserActivationSet  EventType = "user_activation_set"
	EventProductCreated     EventType = "product_created"
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderCancelled     EventType = "order_cancelled"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID string      `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserActivationSetPayload payload.
type UserActivationSetPayload struct {
	Active bool `json:"active"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderNumber string  `json:"order_number"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// OrderCancelledPayload carries the line items of a cancelled order so a
// subscriber can restore reserved stock.
type OrderCancelledPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	Items     []domain.OrderItem `json:"items"`
}
