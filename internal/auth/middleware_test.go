package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pharmashop/internal/domain"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	return nil, nil
}

func newTestApp(t *testing.T, repo *stubUserRepo, tokens *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Code})
		},
	})
	middleware := NewAuthMiddleware(tokens, repo)
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(principal.User.Email)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("test-secret", 60)
	active := &domain.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "alice@example.com",
		Role:     domain.RoleUser,
		IsActive: true,
	}
	inactive := &domain.User{
		ID:       "22222222-2222-2222-2222-222222222222",
		Email:    "bob@example.com",
		Role:     domain.RoleUser,
		IsActive: false,
	}
	repo := &stubUserRepo{users: map[string]*domain.User{active.ID: active, inactive.ID: inactive}}
	app := newTestApp(t, repo, tokens)

	request := func(t *testing.T, decorate func(*http.Request)) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if decorate != nil {
			decorate(req)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("BearerHeader", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(active)
		require.NoError(t, err)

		resp := request(t, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("CookieFallback", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(active)
		require.NoError(t, err)

		resp := request(t, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "token", Value: token})
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("MissingToken", func(t *testing.T) {
		resp := request(t, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("MalformedHeaderNoCookieFallback", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(active)
		require.NoError(t, err)

		resp := request(t, func(req *http.Request) {
			req.Header.Set("Authorization", "Token "+token)
			req.AddCookie(&http.Cookie{Name: "token", Value: token})
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp := request(t, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-jwt")
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(&domain.User{ID: "33333333-3333-3333-3333-333333333333"})
		require.NoError(t, err)

		resp := request(t, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("DeactivatedUserLockedOut", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(inactive)
		require.NoError(t, err)

		resp := request(t, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
