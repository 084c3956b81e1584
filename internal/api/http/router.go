package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pharmashop/internal/api/http/handlers"
	"github.com/spec-kit/pharmashop/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Orders         *handlers.OrdersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify", cfg.AuthMiddleware.Handle, cfg.Auth.Verify)

	api.Get("/search", cfg.Catalog.Search)
	api.Get("/categories", cfg.Catalog.Categories)
	api.Get("/stats", cfg.Catalog.Stats)
	api.Get("/products/:id", cfg.Catalog.GetProduct)

	orders := api.Group("/orders", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	orders.Post("/", cfg.Orders.Checkout)
	orders.Get("/", cfg.Orders.ListOrders)
	orders.Get("/:id", cfg.Orders.GetOrder)
	orders.Put("/:id/cancel", cfg.Orders.Cancel)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/orders", cfg.Admin.ListOrders)
	admin.Put("/orders/:id/status", cfg.Admin.SetOrderStatus)
	admin.Put("/users/:id/activate", cfg.Admin.ActivateUser)
	admin.Put("/users/:id/deactivate", cfg.Admin.DeactivateUser)
	admin.Post("/products", cfg.Admin.CreateProduct)
	admin.Put("/products/:id", cfg.Admin.UpdateProduct)
	admin.Delete("/products/:id", cfg.Admin.DeleteProduct)
	admin.Get("/activity", cfg.Admin.Activity)
}
