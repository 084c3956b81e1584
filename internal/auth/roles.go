package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pharmashop/internal/domain"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

// IsAdmin reports whether the user has an admin-equivalent role.
func IsAdmin(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdmin
}

// RequireAdmin ensures the authenticated caller is an admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !IsAdmin(principal.User) {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller is authenticated, any role.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
