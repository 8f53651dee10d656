package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenReader reads token slots.
type TokenReader interface {
	Get(ctx context.Context, kind token.Kind) (string, error)
}

// ExpiryChecker decides whether a token may still be sent.
type ExpiryChecker interface {
	IsExpired(rawToken string) bool
}

// Refresher replaces an expired token, returning "" when it cannot.
type Refresher interface {
	TryRefresh(ctx context.Context, expired string) string
}

var (
	_ TokenReader   = (*token.Store)(nil)
	_ ExpiryChecker = (*token.Validator)(nil)
)

// Resolver picks the bearer token for each call:
//
//  1. an explicit token in the Intent is used as is
//  2. otherwise the impersonation or access slot, by Mode
//  3. an expired token is handed to the Refresher once
type Resolver struct {
	store     TokenReader
	validator ExpiryChecker
	refresher Refresher
	logger    zerolog.Logger
}

type ResolverOption func(*Resolver)

func WithResolverLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(store TokenReader, validator ExpiryChecker, refresher Refresher, options ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     store,
		validator: validator,
		refresher: refresher,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Resolve returns the token to send. Refresh failures are absorbed and yield
// ""; only a failing token store is reported.
func (r *Resolver) Resolve(ctx context.Context, intent Intent) (string, error) {
	if intent.AccessToken != "" {
		return intent.AccessToken, nil
	}

	kind := token.AccessToken
	if intent.Mode == Impersonated {
		kind = token.ImpersonationToken
	}
	current, err := r.store.Get(ctx, kind)
	if err != nil {
		return "", errors.Wrap(err, "Resolver.Resolve")
	}

	if !r.validator.IsExpired(current) {
		return current, nil
	}
	r.logger.Debug().Str("slot", kind.String()).Msg("token expired, attempting refresh")
	return r.refresher.TryRefresh(ctx, current), nil
}

// Authorize resolves the token and sets the Authorization header. The header
// is set even when the token is empty.
func (r *Resolver) Authorize(ctx context.Context, intent Intent, header http.Header) error {
	tok, err := r.Resolve(ctx, intent)
	if err != nil {
		return err
	}
	header.Set("Authorization", "Bearer "+tok)
	return nil
}
