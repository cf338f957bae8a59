package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenSet is the credential bundle issued by Google for a user.
// ExpiryDate is milliseconds since epoch, matching the wire format
// clients already exchange with the Google token endpoint.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

// HasAccessToken reports whether the set carries a usable access token.
func (t *TokenSet) HasAccessToken() bool {
	return t != nil && t.AccessToken != ""
}

// OAuth2Token converts the set into the oauth2 library representation.
func (t *TokenSet) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(t.ExpiryDate)
	}
	return tok
}

// TokenSetFromOAuth2 converts an oauth2 token into a TokenSet.
func TokenSetFromOAuth2(tok *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		ts.ExpiryDate = tok.Expiry.UnixMilli()
	}
	return ts
}

// TokenInfo is the result of introspecting an access token against
// Google's tokeninfo endpoint.
type TokenInfo struct {
	Audience      string `json:"audience,omitempty"`
	IssuedTo      string `json:"issued_to,omitempty"`
	Scope         string `json:"scope,omitempty"`
	ExpiresIn     int64  `json:"expires_in"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	VerifiedEmail bool   `json:"verified_email,omitempty"`
}
