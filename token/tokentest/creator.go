// Package tokentest mints bearer tokens for tests. The tokens are signed with
// a throwaway HMAC key; the SDK never verifies them.
package tokentest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("tokentest-signing-key")

// Creator mints access tokens with OrderCloud style claims
type Creator struct {
	ClientID string
	Username string
	Roles    []string
	Now      func() time.Time
}

func NewCreator(clientID string) *Creator {
	return &Creator{
		ClientID: clientID,
		Username: "test-user",
		Roles:    []string{"Shopper"},
		Now:      time.Now,
	}
}

// ExpiringIn returns a token whose exp is now+d. Negative d gives an expired token.
func (c *Creator) ExpiringIn(d time.Duration) string {
	return c.WithClaims(jwtlib.MapClaims{
		"exp": c.Now().Add(d).Unix(),
	})
}

// ExpiringAt returns a token with an exact exp claim in epoch seconds.
func (c *Creator) ExpiringAt(exp float64) string {
	return c.WithClaims(jwtlib.MapClaims{"exp": exp})
}

// WithClaims signs the default claims overlaid with extra.
func (c *Creator) WithClaims(extra jwtlib.MapClaims) string {
	claims := jwtlib.MapClaims{
		"usr":  c.Username,
		"role": c.Roles,
		"iss":  "https://auth.example.test",
		"aud":  "https://api.example.test",
		"nbf":  c.Now().Add(-time.Minute).Unix(),
		"jti":  uuid.New().String(),
	}
	if c.ClientID != "" {
		claims["cid"] = c.ClientID
	}
	for k, v := range extra {
		claims[k] = v
	}
	return Sign(claims)
}

// Sign signs arbitrary claims with HS256.
func Sign(claims jwtlib.MapClaims) string {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}
