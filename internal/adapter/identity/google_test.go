package identity

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/meetbridge/meetbridge/internal/port"
)

func TestAuthCodeURLParams(t *testing.T) {
	p := NewGoogleProvider("client-1", "secret-1", "http://localhost:3000/auth/google/tokens")

	raw := p.AuthCodeURL("state-xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "http://localhost:3000/auth/google/tokens", q.Get("redirect_uri"))
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))

	scope := q.Get("scope")
	assert.Contains(t, scope, "https://www.googleapis.com/auth/calendar")
	assert.Contains(t, scope, "https://www.googleapis.com/auth/tasks")
}

func TestRefreshTokenRequiresInput(t *testing.T) {
	p := NewGoogleProvider("client-1", "secret-1", "http://localhost:3000/auth/google/tokens")

	_, err := p.RefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, port.ErrMissingInput)
}

func TestClassifyTokenError(t *testing.T) {
	t.Run("invalid_grant becomes a sentinel", func(t *testing.T) {
		cause := &oauth2.RetrieveError{
			ErrorCode:        "invalid_grant",
			ErrorDescription: "Token has been expired or revoked.",
		}

		err := classifyTokenError("refresh token", cause)
		assert.ErrorIs(t, err, port.ErrInvalidGrant)
		assert.Contains(t, err.Error(), "Token has been expired or revoked.")
	})

	t.Run("other retrieve errors pass through", func(t *testing.T) {
		cause := &oauth2.RetrieveError{ErrorCode: "invalid_client"}

		err := classifyTokenError("exchange code", cause)
		assert.NotErrorIs(t, err, port.ErrInvalidGrant)

		var rerr *oauth2.RetrieveError
		assert.ErrorAs(t, err, &rerr)
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		cause := errors.New("network down")

		err := classifyTokenError("refresh token", cause)
		assert.NotErrorIs(t, err, port.ErrInvalidGrant)
		assert.ErrorIs(t, err, cause)
	})
}
