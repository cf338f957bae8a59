package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"github.com/meetbridge/meetbridge/internal/domain"
)

const sessionTokensKey = "google_tokens"

// RequireTokens resolves the caller's Google credentials with a single
// uniform contract on every resource route: the server-side session is
// checked first, then an explicit "tokens" object in the request body.
// Requests without a usable access token are rejected with 401 before
// any provider call.
func RequireTokens() fiber.Handler {
	return func(c fiber.Ctx) error {
		tokens := SessionTokens(c)

		if !tokens.HasAccessToken() {
			var body struct {
				Tokens *domain.TokenSet `json:"tokens"`
			}
			if err := c.Bind().JSON(&body); err == nil && body.Tokens != nil {
				tokens = body.Tokens
			}
		}

		if !tokens.HasAccessToken() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not authenticated with Google.",
			})
		}

		c.Locals("tokens", tokens)
		return c.Next()
	}
}

// TokensFromContext extracts the resolved TokenSet from Fiber locals.
func TokensFromContext(c fiber.Ctx) *domain.TokenSet {
	tokens, ok := c.Locals("tokens").(*domain.TokenSet)
	if !ok {
		return nil
	}
	return tokens
}

// SaveTokens stores a TokenSet in the server-side session so the
// client never has to re-transmit raw credentials.
func SaveTokens(c fiber.Ctx, tokens *domain.TokenSet) {
	sess := session.FromContext(c)
	if sess == nil || tokens == nil {
		return
	}
	b, err := json.Marshal(tokens)
	if err != nil {
		return
	}
	sess.Set(sessionTokensKey, string(b))
}

// SessionTokens loads the TokenSet from the session, or nil when the
// session carries none.
func SessionTokens(c fiber.Ctx) *domain.TokenSet {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	raw, ok := sess.Get(sessionTokensKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var tokens domain.TokenSet
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil
	}
	return &tokens
}

// SessionID returns the caller's session id, or empty when no session
// middleware is mounted.
func SessionID(c fiber.Ctx) string {
	sess := session.FromContext(c)
	if sess == nil {
		return ""
	}
	return sess.ID()
}
