package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/gofiber/fiber/v3"
	"google.golang.org/api/googleapi"

	"github.com/meetbridge/meetbridge/internal/middleware"
	"github.com/meetbridge/meetbridge/internal/port"
	"github.com/meetbridge/meetbridge/internal/service"
)

// AuthHandler handles the OAuth2 token lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Get("/google", h.Login)
	auth.Get("/google/tokens", h.Tokens)
	auth.Post("/google/refresh-token", h.RefreshToken)
	auth.Get("/validate-token", h.ValidateToken)
}

// Login redirects to the Google consent screen.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	return c.Redirect().To(h.auth.AuthURL(generateState()))
}

// Tokens exchanges the authorization code for a TokenSet, stores it in
// the session, and returns it to the caller.
func (h *AuthHandler) Tokens(c fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization code is missing.",
		})
	}

	tokens, err := h.auth.ExchangeCode(c.Context(), code)
	if err != nil {
		return fail(c, err)
	}

	middleware.SaveTokens(c, tokens)
	return c.JSON(tokens)
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.Bind().JSON(&body)

	if body.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Refresh token is missing.",
		})
	}

	tokens, err := h.auth.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return fail(c, err)
	}

	middleware.SaveTokens(c, tokens)
	return c.JSON(tokens)
}

// ValidateToken introspects an access token and answers with a tagged
// result, so failure never masquerades as success.
func (h *AuthHandler) ValidateToken(c fiber.Ctx) error {
	var body struct {
		AccessToken string `json:"access_token"`
	}
	_ = c.Bind().JSON(&body)
	if body.AccessToken == "" {
		body.AccessToken = c.Query("access_token")
	}

	if body.AccessToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Access token is required.",
		})
	}

	info, err := h.auth.Validate(c.Context(), body.AccessToken)
	if err != nil {
		return c.Status(validationStatus(err)).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"ok": true, "data": info})
}

// validationStatus distinguishes a rejected token (the provider
// answered, the token is bad) from not being able to ask at all.
func validationStatus(err error) int {
	if errors.Is(err, port.ErrMissingInput) {
		return fiber.StatusBadRequest
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 {
		return fiber.StatusUnauthorized
	}
	return fiber.StatusBadGateway
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
