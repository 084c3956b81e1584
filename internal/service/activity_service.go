package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/pharmashop/internal/domain"
	"github.com/spec-kit/pharmashop/internal/repository"
)

// Feed caps and the low-stock threshold. The values are inherited dashboard
// tuning; changing them changes what admins see, so they live here as named
// constants rather than inline literals.
const (
	recentUserCount    = 3
	recentProductCount = 2
	lowStockCount      = 3
	lowStockThreshold  = 5
	activityFeedLimit  = 10
)

// ActivityService builds the admin dashboard feed. Entries are synthesized
// per request and never persisted.
type ActivityService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	now      func() time.Time
}

// NewActivityService constructs the service.
func NewActivityService(users repository.UserRepository, products repository.ProductRepository) *ActivityService {
	return &ActivityService{users: users, products: products, now: time.Now}
}

// Feed merges recent registrations, recent products and currently low-stock
// products into one feed, newest first, capped at ten entries.
//
// Low-stock entries are stamped with the request time rather than the
// product's own timestamp: they describe a live condition, not a historical
// event.
func (s *ActivityService) Feed(ctx context.Context) ([]domain.Activity, error) {
	requestTime := s.now()

	recentUsers, err := s.users.ListRecent(ctx, recentUserCount)
	if err != nil {
		return nil, err
	}
	recentProducts, err := s.products.ListRecent(ctx, recentProductCount)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.ListLowStock(ctx, lowStockThreshold, lowStockCount)
	if err != nil {
		return nil, err
	}

	feed := make([]domain.Activity, 0, len(recentUsers)+len(recentProducts)+len(lowStock))
	for _, user := range recentUsers {
		feed = append(feed, domain.Activity{
			ID:        "user-" + user.ID,
			Type:      domain.ActivityTypeUserRegistered,
			Message:   fmt.Sprintf("New user registered: %s", user.Name),
			Timestamp: user.CreatedAt,
			Status:    "info",
		})
	}
	for _, product := range recentProducts {
		feed = append(feed, domain.Activity{
			ID:        "product-" + product.ID,
			Type:      domain.ActivityTypeProductAdded,
			Message:   fmt.Sprintf("New product added: %s", product.Name),
			Timestamp: product.CreatedAt,
			Status:    "info",
		})
	}
	for _, product := range lowStock {
		feed = append(feed, domain.Activity{
			ID:        "low-stock-" + product.ID,
			Type:      domain.ActivityTypeLowStock,
			Message:   fmt.Sprintf("Low stock: %s (%d left)", product.Name, product.Stock),
			Timestamp: requestTime,
			Status:    "warning",
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > activityFeedLimit {
		feed = feed[:activityFeedLimit]
	}
	return feed, nil
}
