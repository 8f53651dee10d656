// Package identity verifies the signature of tokens issued by the API, using
// the public keys published by its certs endpoint.
package identity

import (
	"context"
	"crypto"
	"encoding/json"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	ErrMissingKeyID = errors.New("token header has no kid")
	ErrUnusableKey  = errors.New("public key is not usable for verification")
)

// KeySource fetches a public key by kid.
type KeySource interface {
	GetPublicKey(ctx context.Context, kid string) (*models.PublicKey, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context, kid string) (*models.PublicKey, error)

func (f KeySourceFunc) GetPublicKey(ctx context.Context, kid string) (*models.PublicKey, error) {
	return f(ctx, kid)
}

// Verifier checks token signatures and expiry. Keys are fetched once per kid
// and cached.
type Verifier struct {
	keys    KeySource
	nowFunc func() time.Time
	parser  *jwt.Parser

	lock      sync.RWMutex
	verifiers map[string]*oidc.IDTokenVerifier
	fetches   singleflight.Group
}

type Option func(*Verifier)

// WithNowFunc sets the time source (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(v *Verifier) {
		v.nowFunc = now
	}
}

func NewVerifier(keys KeySource, options ...Option) *Verifier {
	v := &Verifier{
		keys:      keys,
		nowFunc:   time.Now,
		parser:    jwt.NewParser(),
		verifiers: make(map[string]*oidc.IDTokenVerifier),
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Verify checks rawToken's signature against the key named by its kid header
// and rejects expired tokens. Issuer and audience are not checked.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error) {
	parsed, _, err := v.parser.ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, errors.Wrap(err, "Verifier.Verify")
	}
	if parsed == nil {
		return nil, errors.Wrap(ErrMissingKeyID, "Verifier.Verify")
	}
	kid, _ := parsed.Header["kid"].(string)
	if kid == "" {
		return nil, errors.Wrap(ErrMissingKeyID, "Verifier.Verify")
	}

	verifier, err := v.verifierFor(ctx, kid)
	if err != nil {
		return nil, err
	}
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, errors.Wrap(err, "Verifier.Verify")
	}
	return idToken, nil
}

func (v *Verifier) verifierFor(ctx context.Context, kid string) (*oidc.IDTokenVerifier, error) {
	if verifier, ok := v.cached(kid); ok {
		return verifier, nil
	}

	// Concurrent misses for one kid share a single key fetch.
	result, err, _ := v.fetches.Do(kid, func() (any, error) {
		if verifier, ok := v.cached(kid); ok {
			return verifier, nil
		}
		verifier, err := v.newVerifier(ctx, kid)
		if err != nil {
			return nil, err
		}
		v.lock.Lock()
		v.verifiers[kid] = verifier
		v.lock.Unlock()
		return verifier, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Verifier.verifierFor %s", kid)
	}
	return result.(*oidc.IDTokenVerifier), nil
}

func (v *Verifier) cached(kid string) (*oidc.IDTokenVerifier, bool) {
	v.lock.RLock()
	defer v.lock.RUnlock()
	verifier, ok := v.verifiers[kid]
	return verifier, ok
}

func (v *Verifier) newVerifier(ctx context.Context, kid string) (*oidc.IDTokenVerifier, error) {
	key, err := v.keys.GetPublicKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	jwk, err := toJSONWebKey(key)
	if err != nil {
		return nil, err
	}

	algs := []string{oidc.RS256}
	if jwk.Algorithm != "" {
		algs = []string{jwk.Algorithm}
	}
	return oidc.NewVerifier("", &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{jwk.Key}}, &oidc.Config{
		SkipClientIDCheck:    true,
		SkipIssuerCheck:      true,
		SupportedSigningAlgs: algs,
		Now:                  v.nowFunc,
	}), nil
}

func toJSONWebKey(key *models.PublicKey) (*jose.JSONWebKey, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrap(ErrUnusableKey, err.Error())
	}
	if !jwk.Valid() || !jwk.IsPublic() {
		return nil, ErrUnusableKey
	}
	return &jwk, nil
}
