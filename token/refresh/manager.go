// Package refresh exchanges a stored refresh token for a new access token
// when the resolver finds the current one expired.
package refresh

import (
	"context"

	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Granter performs the refresh_token grant against the auth endpoint.
type Granter interface {
	RefreshToken(ctx context.Context, refreshToken, clientID string) (*oauth2.AccessToken, error)
}

// TokenStore is the part of token.Store the manager needs.
type TokenStore interface {
	Get(ctx context.Context, kind token.Kind) (string, error)
	Set(ctx context.Context, kind token.Kind, rawToken string) error
}

var _ TokenStore = (*token.Store)(nil)

// Manager performs at most one refresh per expired-token observation.
// Concurrent callers holding the same refresh token share the in-flight
// grant.
type Manager struct {
	store    TokenStore
	granter  Granter
	decoder  token.Decoder
	clientID string
	logger   zerolog.Logger
	group    singleflight.Group
}

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a refresh manager. clientID is the configured client id
// and may be empty, in which case the cid claim of the expired token is used.
func NewManager(store TokenStore, granter Granter, decoder token.Decoder, clientID string, options ...Option) *Manager {
	m := &Manager{
		store:    store,
		granter:  granter,
		decoder:  decoder,
		clientID: clientID,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// TryRefresh returns a replacement for the expired token. Without a stored
// refresh token the expired token comes back unchanged. Any failure yields
// "" and is only logged.
func (m *Manager) TryRefresh(ctx context.Context, expired string) string {
	refreshToken, err := m.store.Get(ctx, token.RefreshToken)
	if err != nil {
		m.logger.Debug().Err(err).Msg("reading refresh token failed")
		return ""
	}
	if refreshToken == "" {
		return expired
	}

	clientID := m.resolveClientID(expired)
	if clientID == "" {
		m.logger.Debug().Msg("no client id available for token refresh")
		return ""
	}

	ch := m.group.DoChan(clientID+"\x00"+refreshToken, func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx), refreshToken, clientID)
	})

	select {
	case <-ctx.Done():
		m.logger.Debug().Err(ctx.Err()).Str("client_id", clientID).Msg("token refresh abandoned")
		return ""
	case res := <-ch:
		if res.Err != nil {
			m.logger.Debug().Err(res.Err).Str("client_id", clientID).Msg("token refresh failed")
			return ""
		}
		return res.Val.(string)
	}
}

func (m *Manager) refresh(ctx context.Context, refreshToken, clientID string) (string, error) {
	resp, err := m.granter.RefreshToken(ctx, refreshToken, clientID)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, token.AccessToken, resp.AccessToken); err != nil {
		return "", err
	}
	m.logger.Debug().Str("client_id", clientID).Msg("access token refreshed")
	return resp.AccessToken, nil
}

func (m *Manager) resolveClientID(expired string) string {
	if m.clientID != "" {
		return m.clientID
	}
	if expired == "" {
		return ""
	}
	claims, err := m.decoder.Decode(expired)
	if err != nil {
		return ""
	}
	return claims.ClientID
}
