package oauth2

import (
	"strings"
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// AccessToken represents the response from the OAuth2 token endpoint.
// Returned from POST /oauth/token for every grant type.
type AccessToken struct {
	// AccessToken is the JWT sent as "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Note: This is a hint - the SDK relies on the JWT's "exp" claim
	ExpiresIn int `json:"expires_in"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// RefreshToken is only present when refresh tokens are enabled for the client.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// OAuth2Token converts the response to a golang.org/x/oauth2 token so it can
// be used with oauth2.StaticTokenSource and friends. issuedAt anchors
// ExpiresIn; a zero ExpiresIn yields a token without expiry.
func (t *AccessToken) OAuth2Token(issuedAt time.Time) *xoauth2.Token {
	tok := &xoauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    normaliseTokenType(t.TokenType),
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

func normaliseTokenType(tokenType string) string {
	if strings.EqualFold(tokenType, "bearer") || tokenType == "" {
		return "Bearer"
	}
	return tokenType
}
