package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pharmashop/internal/domain"
)

func newActivityService(users *MockUserRepository, products *MockProductRepository, now time.Time) *ActivityService {
	svc := NewActivityService(users, products)
	svc.now = func() time.Time { return now }
	return svc
}

func TestActivityFeed(t *testing.T) {
	ctx := context.Background()
	requestTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("MergedNewestFirst", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)

		users.On("ListRecent", ctx, recentUserCount).Return([]domain.User{
			{ID: "u1", Name: "Alice", CreatedAt: requestTime.Add(-time.Hour)},
			{ID: "u2", Name: "Bob", CreatedAt: requestTime.Add(-3 * time.Hour)},
		}, nil).Once()
		products.On("ListRecent", ctx, recentProductCount).Return([]domain.Product{
			{ID: "p1", Name: "Aspirin", CreatedAt: requestTime.Add(-2 * time.Hour)},
		}, nil).Once()
		products.On("ListLowStock", ctx, lowStockThreshold, lowStockCount).Return([]domain.Product{
			{ID: "p2", Name: "Ibuprofen", Stock: 2},
		}, nil).Once()

		svc := newActivityService(users, products, requestTime)
		feed, err := svc.Feed(ctx)

		require.NoError(t, err)
		require.Len(t, feed, 4)
		for i := 1; i < len(feed); i++ {
			assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp),
				"feed not sorted at index %d", i)
		}
		assert.Equal(t, "low-stock-p2", feed[0].ID)
		assert.Equal(t, requestTime, feed[0].Timestamp)
		assert.Equal(t, "warning", feed[0].Status)
		assert.Equal(t, domain.ActivityTypeLowStock, feed[0].Type)
		assert.Equal(t, "Low stock: Ibuprofen (2 left)", feed[0].Message)
	})

	t.Run("CappedAtTenEntries", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)

		manyUsers := make([]domain.User, 5)
		for i := range manyUsers {
			manyUsers[i] = domain.User{
				ID:        fmt.Sprintf("u%d", i),
				Name:      fmt.Sprintf("user %d", i),
				CreatedAt: requestTime.Add(-time.Duration(i) * time.Minute),
			}
		}
		manyProducts := make([]domain.Product, 4)
		for i := range manyProducts {
			manyProducts[i] = domain.Product{
				ID:        fmt.Sprintf("p%d", i),
				Name:      fmt.Sprintf("product %d", i),
				CreatedAt: requestTime.Add(-time.Duration(i) * time.Minute),
			}
		}
		lowStock := make([]domain.Product, 3)
		for i := range lowStock {
			lowStock[i] = domain.Product{
				ID:    fmt.Sprintf("ls%d", i),
				Name:  fmt.Sprintf("low %d", i),
				Stock: i,
			}
		}

		users.On("ListRecent", ctx, recentUserCount).Return(manyUsers, nil).Once()
		products.On("ListRecent", ctx, recentProductCount).Return(manyProducts, nil).Once()
		products.On("ListLowStock", ctx, lowStockThreshold, lowStockCount).Return(lowStock, nil).Once()

		svc := newActivityService(users, products, requestTime)
		feed, err := svc.Feed(ctx)

		require.NoError(t, err)
		assert.Len(t, feed, activityFeedLimit)
	})

	t.Run("EmptySources", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)

		users.On("ListRecent", ctx, recentUserCount).Return([]domain.User{}, nil).Once()
		products.On("ListRecent", ctx, recentProductCount).Return([]domain.Product{}, nil).Once()
		products.On("ListLowStock", ctx, lowStockThreshold, lowStockCount).Return([]domain.Product{}, nil).Once()

		svc := newActivityService(users, products, requestTime)
		feed, err := svc.Feed(ctx)

		require.NoError(t, err)
		assert.Empty(t, feed)
	})
}
