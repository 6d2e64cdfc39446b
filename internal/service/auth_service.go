package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bistro-service/internal/auth"
	"github.com/spec-kit/bistro-service/internal/config"
	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/events"
	"github.com/spec-kit/bistro-service/internal/repository"
)

// RegisterResult reports the outcome of a registration attempt. Duplicate
// registration is a no-op that reports the existing identity, not an error.
type RegisterResult struct {
	User    *domain.User
	Created bool
}

// AuthService coordinates registration, login, and identity administration.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		dispatcher: dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// IssueToken signs a token for the given email claim, carrying any extra
// caller-supplied claims, without consulting the user store. Callers must
// have authenticated the identity beforehand; the issuer itself is a pure
// transform.
func (s *AuthService) IssueToken(email string, extra map[string]any) (string, time.Time, error) {
	return s.tokenMgr.GenerateTokenWithClaims(email, extra)
}

// Register creates a new identity with the guest role. If the email is
// already present the call is a no-op reporting the existing record.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return &RegisterResult{User: existing, Created: false}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var hash string
	if password != "" {
		hash, err = auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleGuest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Email:     user.Email,
			Timestamp: time.Now(),
			Payload:   events.UserRegisteredPayload{UserID: user.ID, Name: user.Name},
		})
	}
	return &RegisterResult{User: user, Created: true}, nil
}

// Login authenticates stored credentials and only then issues a token. This
// is the verification stage that must precede issuance; IssueToken alone
// never checks the store.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ListUsers returns all identities.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// IsAdmin reports whether the stored role for the email is admin. A missing
// record is reported as not admin, never as an error.
func (s *AuthService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

// ElevateToAdmin promotes the identity to the admin role.
func (s *AuthService) ElevateToAdmin(ctx context.Context, id string) error {
	return s.users.SetRole(ctx, id, domain.RoleAdmin)
}

// DeleteUser removes the identity.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
