package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pharmashop/internal/api/dto"
	"github.com/spec-kit/pharmashop/internal/auth"
	"github.com/spec-kit/pharmashop/internal/domain"
	"github.com/spec-kit/pharmashop/internal/service"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

// AdminHandler exposes the admin dashboard endpoints. All routes are gated by
// the auth middleware plus RequireAdmin.
type AdminHandler struct {
	orders   *service.OrderService
	catalog  *service.CatalogService
	accounts *service.AuthService
	activity *service.ActivityService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(orders *service.OrderService, catalog *service.CatalogService, accounts *service.AuthService, activity *service.ActivityService) *AdminHandler {
	return &AdminHandler{orders: orders, catalog: catalog, accounts: accounts, activity: activity}
}

// SetOrderStatus handles PUT /api/admin/orders/:id/status.
func (h *AdminHandler) SetOrderStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.orders.SetStatus(c.Context(), principal.User, c.Params("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "order status updated",
		"data":    dto.NewOrderResponse(order),
	})
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)

	orders, err := h.orders.ListAllOrders(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewOrderResponses(orders),
	})
}

// ActivateUser handles PUT /api/admin/users/:id/activate.
func (h *AdminHandler) ActivateUser(c *fiber.Ctx) error {
	return h.setUserActive(c, true, "user activated")
}

// DeactivateUser handles PUT /api/admin/users/:id/deactivate.
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	return h.setUserActive(c, false, "user deactivated")
}

func (h *AdminHandler) setUserActive(c *fiber.Ctx, active bool, message string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.accounts.SetUserActive(c.Context(), principal.User, c.Params("id"), active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    dto.NewUserResponse(user),
	})
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product := productFromRequest(req)
	if err := h.catalog.CreateProduct(c.Context(), principal.User, product); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    dto.NewProductResponse(product),
	})
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product := productFromRequest(req)
	product.ID = c.Params("id")
	product.IsActive = true
	if err := h.catalog.UpdateProduct(c.Context(), product); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewProductResponse(product),
	})
}

// DeleteProduct handles DELETE /api/admin/products/:id.
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "product deleted",
	})
}

// Activity handles GET /api/admin/activity.
func (h *AdminHandler) Activity(c *fiber.Ctx) error {
	feed, err := h.activity.Feed(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    feed,
	})
}

func productFromRequest(req dto.ProductRequest) *domain.Product {
	return &domain.Product{
		Name:                 req.Name,
		Description:          req.Description,
		Brand:                req.Brand,
		Category:             req.Category,
		ActiveIngredient:     req.ActiveIngredient,
		Price:                req.Price,
		Stock:                req.Stock,
		Rating:               req.Rating,
		Tags:                 req.Tags,
		PrescriptionRequired: req.PrescriptionRequired,
	}
}
