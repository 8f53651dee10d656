package client

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/pkg/errors"
	xoauth2 "golang.org/x/oauth2"
)

// ErrNoToken is returned by TokenSource when no usable token can be resolved.
var ErrNoToken = errors.New("no access token available")

type tokenSource struct {
	ctx    context.Context
	client *Client
	intent auth.Intent
}

// TokenSource exposes the resolved access token to code written against
// golang.org/x/oauth2. Expired tokens are refreshed the same way resource
// calls refresh them.
func (c *Client) TokenSource(ctx context.Context) xoauth2.TokenSource {
	return xoauth2.ReuseTokenSource(nil, &tokenSource{ctx: ctx, client: c})
}

// HTTPClient returns an *http.Client that adds the resolved bearer token to
// every request, for endpoints without a resource wrapper.
func (c *Client) HTTPClient(ctx context.Context) *http.Client {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
	}
	return xoauth2.NewClient(ctx, c.TokenSource(ctx))
}

func (s *tokenSource) Token() (*xoauth2.Token, error) {
	raw, err := s.client.resolver.Resolve(s.ctx, s.intent)
	if err != nil {
		return nil, errors.Wrap(err, "tokenSource.Token")
	}
	if raw == "" {
		return nil, ErrNoToken
	}
	tok := &xoauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if claims, err := s.client.validator.Decode(raw); err == nil {
		tok.Expiry = claims.ExpiresAt()
	}
	return tok, nil
}
