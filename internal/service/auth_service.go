package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pharmashop/internal/auth"
	"github.com/spec-kit/pharmashop/internal/config"
	"github.com/spec-kit/pharmashop/internal/domain"
	"github.com/spec-kit/pharmashop/internal/events"
	"github.com/spec-kit/pharmashop/internal/repository"
	apperrors "github.com/spec-kit/pharmashop/pkg/util"
)

// AuthService coordinates registration, login and account activation.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: dispatcher,
	}
}

// Register creates a new customer account and issues a token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			EntityID:  user.ID,
			Actor:     actorFor(user),
			Timestamp: time.Now(),
			Payload:   events.UserRegisteredPayload{Name: user.Name, Email: user.Email},
		})
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account. A deactivated account is rejected even
// with valid credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account deactivated")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// SetUserActive activates or deactivates an account. Deactivation stamps the
// soft-delete markers; activation clears them. Accounts are never removed.
func (s *AuthService) SetUserActive(ctx context.Context, actor *domain.User, userID string, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}

	if active {
		user.IsActive = true
		user.DeactivatedAt = nil
		user.DeactivatedBy = nil
	} else {
		now := time.Now()
		user.IsActive = false
		user.DeactivatedAt = &now
		user.DeactivatedBy = &actor.ID
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserActivationSet,
			EntityID:  user.ID,
			Actor:     actorFor(actor),
			Timestamp: time.Now(),
			Payload:   events.UserActivationSetPayload{Active: active},
		})
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
