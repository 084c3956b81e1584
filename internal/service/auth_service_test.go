package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/pharmashop/internal/config"
	"github.com/spec-kit/pharmashop/internal/domain"
)

func newAuthService(users *MockUserRepository) *AuthService {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewAuthService(cfg, users, nil)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(nil, pgx.ErrNoRows).Once()
		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.User).ID = "11111111-1111-1111-1111-111111111111"
			}).Return(nil).Once()

		svc := newAuthService(users)
		user, token, exp, err := svc.Register(ctx, "Alice", "  Alice@Example.com ", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, token)
		assert.False(t, exp.IsZero())
		users.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").
			Return(&domain.User{Email: "alice@example.com"}, nil).Once()

		svc := newAuthService(users)
		_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret123")

		assert.Equal(t, "CONFLICT", errorCode(t, err))
		users.AssertNotCalled(t, "Create")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			ID:           "11111111-1111-1111-1111-111111111111",
			Email:        "alice@example.com",
			PasswordHash: hashFor(t, "secret123"),
			Role:         domain.RoleUser,
			IsActive:     true,
		}, nil).Once()

		svc := newAuthService(users)
		user, token, _, err := svc.Login(ctx, "Alice@Example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEmpty(t, token)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, pgx.ErrNoRows).Once()

		svc := newAuthService(users)
		_, _, _, err := svc.Login(ctx, "nobody@example.com", "whatever")

		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			Email:        "alice@example.com",
			PasswordHash: hashFor(t, "secret123"),
			IsActive:     true,
		}, nil).Once()

		svc := newAuthService(users)
		_, _, _, err := svc.Login(ctx, "alice@example.com", "wrong")

		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("DeactivatedAccountRejected", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			Email:        "alice@example.com",
			PasswordHash: hashFor(t, "secret123"),
			IsActive:     false,
		}, nil).Once()

		svc := newAuthService(users)
		_, _, _, err := svc.Login(ctx, "alice@example.com", "secret123")

		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})
}

func TestSetUserActive(t *testing.T) {
	ctx := context.Background()
	targetID := "22222222-2222-2222-2222-222222222222"

	t.Run("Deactivate", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", ctx, targetID).Return(&domain.User{ID: targetID, IsActive: true}, nil).Once()
		users.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		svc := newAuthService(users)
		admin := adminUser()
		user, err := svc.SetUserActive(ctx, admin, targetID, false)

		require.NoError(t, err)
		assert.False(t, user.IsActive)
		require.NotNil(t, user.DeactivatedAt)
		require.NotNil(t, user.DeactivatedBy)
		assert.Equal(t, admin.ID, *user.DeactivatedBy)
	})

	t.Run("ReactivateClearsMarkers", func(t *testing.T) {
		users := new(MockUserRepository)
		admin := adminUser()
		deactivated := &domain.User{ID: targetID, IsActive: false}
		deactivatedBy := admin.ID
		deactivated.DeactivatedBy = &deactivatedBy
		users.On("GetByID", ctx, targetID).Return(deactivated, nil).Once()
		users.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		svc := newAuthService(users)
		user, err := svc.SetUserActive(ctx, admin, targetID, true)

		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.Nil(t, user.DeactivatedAt)
		assert.Nil(t, user.DeactivatedBy)
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		users := new(MockUserRepository)

		svc := newAuthService(users)
		_, err := svc.SetUserActive(ctx, customer(), targetID, false)

		assert.Equal(t, "FORBIDDEN", errorCode(t, err))
		users.AssertNotCalled(t, "Update")
	})

	t.Run("MalformedIDNotFound", func(t *testing.T) {
		users := new(MockUserRepository)

		svc := newAuthService(users)
		_, err := svc.SetUserActive(ctx, adminUser(), "not-a-uuid", false)

		assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	})
}
