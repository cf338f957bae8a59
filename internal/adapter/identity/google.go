package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// Scopes requested at authorization time. Offline access plus forced
// consent guarantees a refresh token even on repeat authorizations.
var scopes = []string{
	calendar.CalendarScope,
	calendar.CalendarReadonlyScope,
	calendar.CalendarEventsScope,
	tasks.TasksScope,
}

// GoogleProvider implements port.IdentityProvider for Google OAuth2.
type GoogleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider creates a new Google OAuth2 identity provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the Google consent screen URL.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, classifyTokenError("exchange code", err)
	}
	return domain.TokenSetFromOAuth2(tok), nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (g *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token: %w", port.ErrMissingInput)
	}

	src := g.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyTokenError("refresh token", err)
	}

	ts := domain.TokenSetFromOAuth2(tok)
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

// ValidateToken introspects an access token against Google's tokeninfo
// endpoint. No credentials are needed; the token itself is the query.
func (g *GoogleProvider) ValidateToken(ctx context.Context, accessToken string) (*domain.TokenInfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("google: create oauth2 service: %w", err)
	}

	info, err := svc.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: tokeninfo: %w", err)
	}

	return &domain.TokenInfo{
		Audience:      info.Audience,
		IssuedTo:      info.IssuedTo,
		Scope:         info.Scope,
		ExpiresIn:     info.ExpiresIn,
		UserID:        info.UserId,
		Email:         info.Email,
		VerifiedEmail: info.VerifiedEmail,
	}, nil
}

// classifyTokenError surfaces invalid_grant responses as
// port.ErrInvalidGrant so the HTTP layer can treat them as client
// failures rather than opaque provider errors.
func classifyTokenError(op string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_grant" {
		return fmt.Errorf("google: %s: %w: %s", op, port.ErrInvalidGrant, rerr.ErrorDescription)
	}
	return fmt.Errorf("google: %s: %w", op, err)
}
