package port

import (
	"context"

	"github.com/meetbridge/meetbridge/internal/domain"
)

// IdentityProvider abstracts the OAuth2 identity provider. The single
// implementation talks to Google; the interface keeps services and
// handlers testable without network access.
type IdentityProvider interface {
	// AuthCodeURL returns the full OAuth2 authorization URL for
	// redirecting the user, requesting offline access with forced
	// consent so a refresh token is always issued.
	AuthCodeURL(state string) string

	// ExchangeCode exchanges a one-time authorization code for a
	// TokenSet. Expired, reused, or malformed codes fail with
	// ErrInvalidGrant.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error)

	// RefreshToken exchanges a refresh token for a fresh access token.
	// A revoked refresh token fails with ErrInvalidGrant.
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error)

	// ValidateToken introspects an access token against the provider's
	// tokeninfo endpoint.
	ValidateToken(ctx context.Context, accessToken string) (*domain.TokenInfo, error)
}
