package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pharmashop/internal/domain"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

func newOrderService(orders *MockOrderRepository, products *MockProductRepository) *OrderService {
	return NewOrderService(OrderDependencies{
		OrderRepo:   orders,
		ProductRepo: products,
	})
}

func adminUser() *domain.User {
	return &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin, IsActive: true}
}

func customer() *domain.User {
	return &domain.User{ID: uuid.NewString(), Role: domain.RoleUser, IsActive: true}
}

func orderWithStatus(userID string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:          uuid.NewString(),
		OrderNumber: "ORD-TEST",
		UserID:      userID,
		Status:      status,
		Items:       []domain.OrderItem{{ProductID: uuid.NewString(), Name: "Aspirin", UnitPrice: 4.5, Quantity: 2}},
		TotalAmount: 9.0,
	}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmedToShipped", func(t *testing.T) {
		orders := new(MockOrderRepository)
		order := orderWithStatus(uuid.NewString(), domain.OrderStatusConfirmed)
		orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()
		orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusShipped).Return(nil).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		updated, err := svc.SetStatus(ctx, adminUser(), order.ID, domain.OrderStatusShipped)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusShipped, updated.Status)
		orders.AssertExpectations(t)
	})

	t.Run("PendingNotAnAllowedTarget", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newOrderService(orders, new(MockProductRepository))

		_, err := svc.SetStatus(ctx, adminUser(), uuid.NewString(), domain.OrderStatusPending)

		assert.Equal(t, "INVALID_INPUT", errorCode(t, err))
		orders.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("UnknownTargetValue", func(t *testing.T) {
		svc := newOrderService(new(MockOrderRepository), new(MockProductRepository))

		_, err := svc.SetStatus(ctx, adminUser(), uuid.NewString(), domain.OrderStatus("returned"))

		assert.Equal(t, "INVALID_INPUT", errorCode(t, err))
	})

	t.Run("TerminalStatesRejectEveryTarget", func(t *testing.T) {
		for _, terminal := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
			for _, target := range []domain.OrderStatus{domain.OrderStatusConfirmed, domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
				orders := new(MockOrderRepository)
				order := orderWithStatus(uuid.NewString(), terminal)
				orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()

				svc := newOrderService(orders, new(MockProductRepository))
				_, err := svc.SetStatus(ctx, adminUser(), order.ID, target)

				assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err),
					"terminal %s target %s", terminal, target)
				orders.AssertNotCalled(t, "UpdateStatus")
			}
		}
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		svc := newOrderService(new(MockOrderRepository), new(MockProductRepository))

		_, err := svc.SetStatus(ctx, customer(), uuid.NewString(), domain.OrderStatusConfirmed)

		assert.Equal(t, "FORBIDDEN", errorCode(t, err))
	})

	t.Run("MalformedIDNotFound", func(t *testing.T) {
		svc := newOrderService(new(MockOrderRepository), new(MockProductRepository))

		_, err := svc.SetStatus(ctx, adminUser(), "not-a-uuid", domain.OrderStatusConfirmed)

		assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	})

	t.Run("UnknownOrderNotFound", func(t *testing.T) {
		orders := new(MockOrderRepository)
		id := uuid.NewString()
		orders.On("GetByID", ctx, id).Return(nil, pgx.ErrNoRows).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		_, err := svc.SetStatus(ctx, adminUser(), id, domain.OrderStatusConfirmed)

		assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerCancelsPendingThenSecondCancelFails", func(t *testing.T) {
		owner := customer()
		order := orderWithStatus(owner.ID, domain.OrderStatusPending)

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()
		orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusCancelled).Return(nil).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		cancelled, err := svc.Cancel(ctx, owner, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

		orders.On("GetByID", ctx, order.ID).Return(cancelled, nil).Once()
		_, err = svc.Cancel(ctx, owner, order.ID)
		assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
		orders.AssertExpectations(t)
	})

	t.Run("AdminCancelsConfirmed", func(t *testing.T) {
		order := orderWithStatus(uuid.NewString(), domain.OrderStatusConfirmed)

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()
		orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusCancelled).Return(nil).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		cancelled, err := svc.Cancel(ctx, adminUser(), order.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		order := orderWithStatus(uuid.NewString(), domain.OrderStatusPending)

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		_, err := svc.Cancel(ctx, customer(), order.ID)

		assert.Equal(t, "FORBIDDEN", errorCode(t, err))
		orders.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("ShippedCannotBeCancelled", func(t *testing.T) {
		owner := customer()
		order := orderWithStatus(owner.ID, domain.OrderStatusShipped)

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil).Once()

		svc := newOrderService(orders, new(MockProductRepository))
		_, err := svc.Cancel(ctx, owner, order.ID)

		assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		buyer := customer()
		product := &domain.Product{
			ID:       uuid.NewString(),
			Name:     "Ibuprofen 200mg",
			Price:    6.5,
			Stock:    10,
			IsActive: true,
		}

		products := new(MockProductRepository)
		products.On("GetByID", ctx, product.ID).Return(product, nil).Once()
		products.On("DecrementStock", ctx, product.ID, 3).Return(nil).Once()

		orders := new(MockOrderRepository)
		orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		svc := newOrderService(orders, products)
		order, err := svc.Checkout(ctx, buyer, []CheckoutItemInput{{ProductID: product.ID, Quantity: 3}})

		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, buyer.ID, order.UserID)
		assert.InDelta(t, 19.5, order.TotalAmount, 0.001)
		require.Len(t, order.Items, 1)
		assert.Equal(t, product.Name, order.Items[0].Name)
		products.AssertExpectations(t)
		orders.AssertExpectations(t)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		buyer := customer()
		product := &domain.Product{ID: uuid.NewString(), Name: "Paracetamol", Price: 3, Stock: 1, IsActive: true}

		products := new(MockProductRepository)
		products.On("GetByID", ctx, product.ID).Return(product, nil).Once()

		svc := newOrderService(new(MockOrderRepository), products)
		_, err := svc.Checkout(ctx, buyer, []CheckoutItemInput{{ProductID: product.ID, Quantity: 5}})

		assert.Equal(t, "CONFLICT", errorCode(t, err))
	})

	t.Run("EmptyCart", func(t *testing.T) {
		svc := newOrderService(new(MockOrderRepository), new(MockProductRepository))

		_, err := svc.Checkout(ctx, customer(), nil)

		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	})
}
