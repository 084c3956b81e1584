package dto

import (
	"time"

	"github.com/spec-kit/pharmashop/internal/domain"
)

// CheckoutRequest payload.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

// CheckoutItem is one requested line item.
type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SetStatusRequest is the admin status-change payload.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	UserID      string             `json:"userId"`
	Items       []domain.OrderItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	Status      domain.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewOrderResponse converts the domain model.
func NewOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// NewOrderResponses converts a slice.
func NewOrderResponses(orders []domain.Order) []OrderResponse {
	items := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, NewOrderResponse(&orders[i]))
	}
	return items
}
