package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pharmashop/internal/api/dto"
	"github.com/spec-kit/pharmashop/internal/service"
)

// CatalogHandler serves public catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// Search handles GET /api/search.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	params := parseCatalogQuery(c)
	result, err := h.catalog.Search(c.Context(), params)
	if err != nil {
		return err
	}

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"products":    dto.NewProductResponses(result.Products),
			"suggestions": suggestions,
			"pagination":  result.Pagination,
			"filters": fiber.Map{
				"q":        result.Filter.Search,
				"category": result.Filter.Category,
				"minPrice": result.Filter.MinPrice,
				"maxPrice": result.Filter.MaxPrice,
				"inStock":  result.Filter.InStockOnly,
				"sortBy":   string(result.Filter.Sort),
			},
		},
	})
}

// GetProduct handles GET /api/products/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewProductResponse(product),
	})
}

// Categories handles GET /api/categories.
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	facets, err := h.catalog.Facets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"categories": facets.Categories,
			"brands":     facets.Brands,
		},
	})
}

// Stats handles GET /api/stats.
func (h *CatalogHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.catalog.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

func parseCatalogQuery(c *fiber.Ctx) service.CatalogParams {
	params := service.CatalogParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), 0),
	}
	if val := c.Query("minPrice"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			params.MinPrice = &parsed
		}
	}
	if val := c.Query("maxPrice"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			params.MaxPrice = &parsed
		}
	}
	params.InStock = parseBool(c.Query("inStock"))
	if val := c.Query("prescriptionRequired"); val != "" {
		flag := parseBool(val)
		params.PrescriptionRequired = &flag
	}
	return params
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	return err == nil && parsed
}
