package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// AuthService handles the OAuth2 token lifecycle.
type AuthService struct {
	identity port.IdentityProvider
	timeout  time.Duration
}

// NewAuthService creates a new authentication service. timeout bounds
// each provider call; zero means no explicit deadline.
func NewAuthService(identity port.IdentityProvider, timeout time.Duration) *AuthService {
	return &AuthService{identity: identity, timeout: timeout}
}

func (s *AuthService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// AuthURL returns the provider consent screen URL for the given state.
func (s *AuthService) AuthURL(state string) string {
	return s.identity.AuthCodeURL(state)
}

// ExchangeCode exchanges a one-time authorization code for a TokenSet.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	tokens, err := s.identity.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	slog.Info("authorization code exchanged", "has_refresh_token", tokens.RefreshToken != "")
	return tokens, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.identity.RefreshToken(ctx, refreshToken)
}

// Validate introspects an access token against the identity provider.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*domain.TokenInfo, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.identity.ValidateToken(ctx, accessToken)
}
