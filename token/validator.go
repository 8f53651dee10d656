package token

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ordercloud/internal/utils"
)

// ExpiryBuffer is subtracted from the current time before comparing with a
// token's exp claim, so a token is treated as expired slightly early and is
// never sent while it is about to lapse.
const ExpiryBuffer = 10 * time.Second

// Claims is the decoded payload of a bearer token. Nothing in it has been
// verified.
type Claims struct {
	Exp           float64 // seconds since epoch
	HasExpiry     bool
	ClientID      string   // cid
	Username      string   // usr
	UserType      string   // usrtype
	Impersonating bool     // imp
	Roles         []string // role
	Raw           map[string]any
}

// ExpiresAt returns the expiry as a time, or the zero time when the token
// carries no exp claim.
func (c *Claims) ExpiresAt() time.Time {
	if !c.HasExpiry {
		return time.Time{}
	}
	sec := int64(c.Exp)
	nsec := int64((c.Exp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Validator decodes bearer tokens and decides whether they are still usable.
// It never checks signatures.
type Validator struct {
	nowFunc func() time.Time
	parser  *jwt.Parser
}

type ValidatorOption func(*Validator)

// WithNowFunc sets the time source (primarily for testing).
func WithNowFunc(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.nowFunc = now
	}
}

func NewValidator(options ...ValidatorOption) *Validator {
	v := &Validator{
		nowFunc: time.Now,
		parser:  jwt.NewParser(),
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Decode splits the token, base64url-decodes its payload and parses the
// claim set. The header and signature segments are not read.
func (v *Validator) Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, &InvalidTokenError{Reason: "token is empty"}
	}
	segments := strings.Split(rawToken, ".")
	if len(segments) < 2 {
		return nil, &InvalidTokenError{Reason: "token has no segments"}
	}

	payload, err := v.parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, &InvalidTokenError{Reason: "payload is not base64url", Err: err}
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, &InvalidTokenError{Reason: "payload is not JSON", Err: err}
	}
	mapClaims, ok := decoded.(map[string]any)
	if !ok {
		return nil, &InvalidTokenError{Reason: "payload is not a claim set"}
	}
	return newClaims(mapClaims)
}

// IsExpired reports whether the token is empty, undecodable, or has an exp
// at or before now minus ExpiryBuffer. Tokens without exp never expire.
func (v *Validator) IsExpired(rawToken string) bool {
	claims, err := v.Decode(rawToken)
	if err != nil {
		return true
	}
	if !claims.HasExpiry {
		return false
	}
	now := float64(v.nowFunc().UnixNano()) / float64(time.Second)
	return claims.Exp <= now-ExpiryBuffer.Seconds()
}

func newClaims(mc map[string]any) (*Claims, error) {
	c := &Claims{Raw: mc}
	if raw, present := mc["exp"]; present {
		exp, ok := expiry(raw)
		if !ok {
			return nil, &InvalidTokenError{Reason: fmt.Sprintf("exp claim %v is not a number", raw)}
		}
		c.Exp = exp
		c.HasExpiry = true
	}
	c.ClientID, _ = mc["cid"].(string)
	c.Username, _ = mc["usr"].(string)
	c.UserType, _ = mc["usrtype"].(string)
	switch imp := mc["imp"].(type) {
	case bool:
		c.Impersonating = imp
	case string:
		c.Impersonating = imp != ""
	}
	switch roles := mc["role"].(type) {
	case []any:
		c.Roles = utils.ToStringSlice(roles)
	case string:
		c.Roles = []string{roles}
	}
	return c, nil
}

// expiry accepts a JSON number or a numeric string for exp.
func expiry(v any) (float64, bool) {
	if exp, ok := utils.ToFloat64(v); ok {
		return exp, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	exp, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(exp) || math.IsInf(exp, 0) {
		return 0, false
	}
	return exp, true
}
