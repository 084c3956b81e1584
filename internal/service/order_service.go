package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pharmashop/internal/domain"
	"github.com/spec-kit/pharmashop/internal/events"
	"github.com/spec-kit/pharmashop/internal/repository"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

// adminStatusTargets is the set of values an admin may request. "pending" is
// deliberately absent; orders never move back to pending.
var adminStatusTargets = map[domain.OrderStatus]struct{}{
	domain.OrderStatusConfirmed: {},
	domain.OrderStatusShipped:   {},
	domain.OrderStatusDelivered: {},
	domain.OrderStatusCancelled: {},
}

// cancellableStatuses are the states a cancel request may act on.
var cancellableStatuses = map[domain.OrderStatus]struct{}{
	domain.OrderStatusPending:   {},
	domain.OrderStatusConfirmed: {},
}

// OrderService coordinates the order lifecycle.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// OrderDependencies bundles repositories for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
}

// CheckoutItemInput is one requested line item.
type CheckoutItemInput struct {
	ProductID string
	Quantity  int
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Checkout creates a pending order from the requested line items, validating
// stock and pricing each line from the current catalog.
func (s *OrderService) Checkout(ctx context.Context, user *domain.User, items []CheckoutItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("at least one item required", nil)
	}

	order := &domain.Order{
		OrderNumber: generateOrderNumber(),
		UserID:      user.ID,
		Status:      domain.OrderStatusPending,
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", nil)
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("product", map[string]any{"product_id": item.ProductID})
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, apperrors.NewValidationError("product unavailable", map[string]any{"product_id": product.ID})
		}
		if product.Stock < item.Quantity {
			return nil, apperrors.NewConflict("insufficient stock", map[string]any{"product_id": product.ID})
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
		order.TotalAmount += product.Price * float64(item.Quantity)
	}

	for _, line := range order.Items {
		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewConflict("insufficient stock", map[string]any{"product_id": line.ProductID})
			}
			return nil, err
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventOrderPlaced,
		EntityID: order.ID,
		Actor:    actorFor(user),
		Payload: events.OrderPlacedPayload{
			OrderNumber: order.OrderNumber,
			TotalAmount: order.TotalAmount,
			ItemCount:   len(order.Items),
		},
	})
	return order, nil
}

// GetOrder fetches an order visible to the caller: owner or admin.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not your order")
	}
	return order, nil
}

// ListOrdersForUser returns the caller's orders, newest first.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// ListAllOrders returns every order for the admin dashboard.
func (s *OrderService) ListAllOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListAll(ctx, limit, offset)
}

// SetStatus applies an admin status change. The target value must be in the
// allowed set, and no transition out of a terminal state is permitted, not
// even to the same terminal value.
func (s *OrderService) SetStatus(ctx context.Context, actor *domain.User, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if _, ok := adminStatusTargets[newStatus]; !ok {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("status %q is not an allowed target", newStatus))
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition(fmt.Sprintf("order is already %s", order.Status))
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, order.ID, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus
	order.UpdatedAt = time.Now()

	s.publishEvent(ctx, events.Event{
		Type:     events.EventOrderStatusChanged,
		EntityID: order.ID,
		Actor:    actorFor(actor),
		Payload: events.OrderStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	if newStatus == domain.OrderStatusCancelled {
		s.publishCancelled(ctx, actor, order, oldStatus)
	}
	return order, nil
}

// Cancel cancels an order on behalf of its owner or an admin. Only pending
// and confirmed orders can be cancelled; a second cancel on the same order
// fails on the terminal-state guard rather than silently succeeding.
func (s *OrderService) Cancel(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("not your order")
	}
	if _, ok := cancellableStatuses[order.Status]; !ok {
		return nil, apperrors.NewInvalidTransition(fmt.Sprintf("order with status %s cannot be cancelled", order.Status))
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now()

	s.publishCancelled(ctx, actor, order, oldStatus)
	return order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
		}
		return nil, err
	}
	return order, nil
}

// publishCancelled emits the cancellation event carrying the order's line
// items. Restoring reserved stock is left to subscribers of this event.
func (s *OrderService) publishCancelled(ctx context.Context, actor *domain.User, order *domain.Order, oldStatus domain.OrderStatus) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventOrderCancelled,
		EntityID: order.ID,
		Actor:    actorFor(actor),
		Payload: events.OrderCancelledPayload{
			OldStatus: oldStatus,
			Items:     order.Items,
		},
	})
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(user *domain.User) events.Actor {
	return events.Actor{Role: user.Role, UserID: user.ID}
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
