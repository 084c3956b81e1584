package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pharmashop/internal/domain"
	"github.com/spec-kit/pharmashop/internal/events"
	"github.com/spec-kit/pharmashop/internal/persistence"
	"github.com/spec-kit/pharmashop/internal/repository"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

const (
	// categoryAll is the sentinel meaning "no category filter".
	categoryAll = "all"

	defaultMinPrice = 0
	defaultMaxPrice = 999999
	defaultPageSize = 20
	maxPageSize     = 100

	// suggestionMinResults triggers the "did you mean" fallback when a
	// non-empty query returns fewer results than this.
	suggestionMinResults = 5
	suggestionLimit      = 5
	suggestionPrefixLen  = 3

	brandFacetLimit = 20

	facetsCacheKey = "catalog:facets"
	statsCacheKey  = "catalog:stats"
)

// CatalogParams carries raw search parameters as they arrive on the wire.
type CatalogParams struct {
	Query                string
	Category             string
	MinPrice             *float64
	MaxPrice             *float64
	InStock              bool
	PrescriptionRequired *bool
	SortBy               string
	Page                 int
	Limit                int
}

// Pagination describes one result page.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// SearchResult is the catalog search response.
type SearchResult struct {
	Products    []domain.Product
	Suggestions []string
	Pagination  Pagination
	Filter      repository.ProductFilter
}

// Facets bundles category and brand summaries.
type Facets struct {
	Categories []repository.CategoryFacet `json:"categories"`
	Brands     []repository.BrandFacet    `json:"brands"`
}

// StoreStats is the dashboard statistics payload.
type StoreStats struct {
	TotalProducts   int64   `json:"totalProducts"`
	TotalCategories int64   `json:"totalCategories"`
	TotalOrders     int64   `json:"totalOrders"`
	AverageRating   float64 `json:"averageRating"`
}

// CatalogService serves catalog reads and admin product mutations.
type CatalogService struct {
	products   repository.ProductRepository
	orders     repository.OrderRepository
	cache      *persistence.Redis
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
}

// CatalogDependencies bundles catalog service requirements.
type CatalogDependencies struct {
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	Cache       *persistence.Redis
	CacheTTL    time.Duration
	Dispatcher  events.Dispatcher
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CatalogService{
		products:   deps.ProductRepo,
		orders:     deps.OrderRepo,
		cache:      deps.Cache,
		cacheTTL:   ttl,
		dispatcher: deps.Dispatcher,
	}
}

// BuildProductFilter turns raw parameters into the structured query
// specification. It is a pure function so filter construction is testable
// without a database.
func BuildProductFilter(params CatalogParams) repository.ProductFilter {
	filter := repository.ProductFilter{
		Search:               strings.TrimSpace(params.Query),
		MinPrice:             defaultMinPrice,
		MaxPrice:             defaultMaxPrice,
		InStockOnly:          params.InStock,
		PrescriptionRequired: params.PrescriptionRequired,
		Sort:                 mapSortKey(params.SortBy),
	}

	if category := strings.TrimSpace(params.Category); category != "" && !strings.EqualFold(category, categoryAll) {
		filter.Category = category
	}
	if params.MinPrice != nil && *params.MinPrice >= 0 {
		filter.MinPrice = *params.MinPrice
	}
	if params.MaxPrice != nil && *params.MaxPrice >= 0 {
		filter.MaxPrice = *params.MaxPrice
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter
}

func mapSortKey(sortBy string) repository.SortKey {
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "price_asc":
		return repository.SortPriceAsc
	case "price_desc":
		return repository.SortPriceDesc
	case "name_asc":
		return repository.SortNameAsc
	case "name_desc":
		return repository.SortNameDesc
	case "newest":
		return repository.SortNewest
	case "oldest":
		return repository.SortOldest
	default:
		return repository.SortRelevance
	}
}

// TotalPages computes the page count for a result set.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Search runs a catalog query and, for sparse results on a non-empty query,
// fetches prefix-based name suggestions.
func (s *CatalogService) Search(ctx context.Context, params CatalogParams) (*SearchResult, error) {
	filter := BuildProductFilter(params)
	products, total, err := s.products.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Products: products,
		Filter:   filter,
		Pagination: Pagination{
			Page:  filter.Offset/filter.Limit + 1,
			Limit: filter.Limit,
			Total: total,
			Pages: TotalPages(total, filter.Limit),
		},
	}

	if filter.Search != "" && total < suggestionMinResults {
		prefix := filter.Search
		if runes := []rune(prefix); len(runes) > suggestionPrefixLen {
			prefix = string(runes[:suggestionPrefixLen])
		}
		suggestions, err := s.products.SuggestNames(ctx, prefix, suggestionLimit)
		if err != nil {
			return nil, err
		}
		result.Suggestions = suggestions
	}
	return result, nil
}

// GetProduct loads one active product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}
	return product, nil
}

// Facets returns category and brand summaries, cached for a short TTL.
func (s *CatalogService) Facets(ctx context.Context) (*Facets, error) {
	var cached Facets
	if s.cache.GetJSON(ctx, facetsCacheKey, &cached) {
		return &cached, nil
	}

	categories, err := s.products.CategoryFacets(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := s.products.BrandFacets(ctx, brandFacetLimit)
	if err != nil {
		return nil, err
	}

	facets := &Facets{Categories: categories, Brands: brands}
	s.cache.SetJSON(ctx, facetsCacheKey, facets, s.cacheTTL)
	return facets, nil
}

// Stats returns dashboard statistics, cached for a short TTL.
func (s *CatalogService) Stats(ctx context.Context) (*StoreStats, error) {
	var cached StoreStats
	if s.cache.GetJSON(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	productStats, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &StoreStats{
		TotalProducts:   productStats.TotalProducts,
		TotalCategories: productStats.TotalCategories,
		TotalOrders:     totalOrders,
		AverageRating:   productStats.AverageRating,
	}
	s.cache.SetJSON(ctx, statsCacheKey, stats, s.cacheTTL)
	return stats, nil
}

// CreateProduct adds a catalog entry.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.IsActive = true
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.invalidateCaches(ctx)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventProductCreated,
			EntityID:  product.ID,
			Actor:     actorFor(actor),
			Timestamp: time.Now(),
			Payload: events.ProductCreatedPayload{
				Name:     product.Name,
				Category: product.Category,
				Stock:    product.Stock,
			},
		})
	}
	return nil
}

// UpdateProduct replaces a catalog entry's mutable fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.products.Update(ctx, product); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", map[string]any{"id": product.ID})
		}
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// DeleteProduct soft-deletes a catalog entry by marking it inactive.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	if err := s.products.Deactivate(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

func (s *CatalogService) invalidateCaches(ctx context.Context) {
	s.cache.Delete(ctx, facetsCacheKey, statsCacheKey)
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if product.Price < 0 {
		return apperrors.NewValidationError("price must be non-negative", nil)
	}
	if product.Stock < 0 {
		return apperrors.NewValidationError("stock must be non-negative", nil)
	}
	return nil
}
