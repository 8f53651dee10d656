// Package client assembles one OrderCloud SDK instance. A Client owns its
// TokenSet; two clients never share token state unless they are pointed at
// the same storage medium with the same client id.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/jrsteele09/go-ordercloud/identity"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/resources"
	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/jrsteele09/go-ordercloud/token/cookierepo"
	"github.com/jrsteele09/go-ordercloud/token/memrepo"
	"github.com/jrsteele09/go-ordercloud/token/redisrepo"
	"github.com/jrsteele09/go-ordercloud/token/refresh"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ resources.Requester = (*Client)(nil)

type Client struct {
	config     config.Config
	store      *token.Store
	validator  *token.Validator
	transport  *transport.Client
	httpClient *http.Client
	auth       *auth.Service
	resolver   *auth.Resolver
	verifier   *identity.Verifier
	logger     zerolog.Logger

	Products resources.Products
	Certs    resources.Certs
	UserInfo resources.UserInfo
}

// New builds the pipeline in dependency order:
// store, transport, auth service, refresh manager, resolver, resources.
func New(cfg config.Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[client.New] invalid configuration")
	}
	s := settings{
		logger:  zerolog.Nop(),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(&s)
	}

	repo, env, err := s.tokenRepo(cfg)
	if err != nil {
		return nil, err
	}
	validator := token.NewValidator(token.WithNowFunc(s.nowFunc))
	store := token.NewStore(repo, token.NewKeyGenerator(cfg.GetClientID(), env), validator)

	transportOpts := []transport.Option{transport.WithLogger(s.logger)}
	if s.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(s.httpClient))
	}
	tr := transport.New(cfg, append(transportOpts, s.transport...)...)

	authService, err := auth.NewService(tr, auth.WithLogger(s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[client.New]")
	}
	refresher := refresh.NewManager(store, authService, validator, cfg.GetClientID(), refresh.WithLogger(s.logger))
	resolver := auth.NewResolver(store, validator, refresher, auth.WithResolverLogger(s.logger))

	c := &Client{
		config:     cfg,
		store:      store,
		validator:  validator,
		transport:  tr,
		httpClient: s.httpClient,
		auth:       authService,
		resolver:   resolver,
		logger:     s.logger,
	}
	c.Products = resources.NewProducts(c)
	c.Certs = resources.NewCerts(c)
	c.UserInfo = resources.NewUserInfo(c)
	c.verifier = identity.NewVerifier(identity.KeySourceFunc(func(ctx context.Context, kid string) (*models.PublicKey, error) {
		return c.Certs.GetPublicKey(ctx, kid)
	}), identity.WithNowFunc(s.nowFunc))

	c.logger.Debug().
		Str("base_url", cfg.GetBaseURL()).
		Str("api_version", cfg.GetAPIVersion()).
		Str("token_env", string(env)).
		Msg("ordercloud client ready")
	return c, nil
}

// tokenRepo picks the storage medium: an explicit repo, then a cookie jar,
// then Redis, then process memory.
func (s settings) tokenRepo(cfg config.Config) (token.Repo, token.Environment, error) {
	switch {
	case s.repo != nil:
		env := s.env
		if env == "" {
			env = token.EnvironmentServer
		}
		return s.repo, env, nil
	case s.jar != nil:
		repo, err := cookierepo.New(s.jar, cfg.GetBaseURL(), cfg.GetCookieOptions())
		if err != nil {
			return nil, "", errors.Wrap(err, "[client.New]")
		}
		return repo, token.EnvironmentBrowser, nil
	case s.redis != nil:
		return redisrepo.New(s.redis, s.redisOpts...), token.EnvironmentServer, nil
	}
	return memrepo.New(), token.EnvironmentServer, nil
}

func (c *Client) Config() config.Config {
	return c.config
}

// Auth exposes the token endpoint grants. Tokens it returns are not stored;
// pass them to SetTokens.
func (c *Client) Auth() *auth.Service {
	return c.auth
}

// Tokens exposes the TokenSet slots.
func (c *Client) Tokens() *token.Store {
	return c.store
}

// Verifier checks token signatures against the API's certs endpoint.
func (c *Client) Verifier() *identity.Verifier {
	return c.verifier
}

// SetTokens stores the access token and, when present, the refresh token of
// a grant response.
func (c *Client) SetTokens(ctx context.Context, tok *oauth2.AccessToken) error {
	if tok == nil {
		return errors.Wrap(auth.ErrNoTokenResponse, "Client.SetTokens")
	}
	if err := c.store.Set(ctx, token.AccessToken, tok.AccessToken); err != nil {
		return errors.Wrap(err, "Client.SetTokens")
	}
	if tok.RefreshToken == "" {
		return nil
	}
	if err := c.store.Set(ctx, token.RefreshToken, tok.RefreshToken); err != nil {
		return errors.Wrap(err, "Client.SetTokens")
	}
	return nil
}

// Send authorizes and dispatches one resource call. Failed calls return an
// *apierror.Error, a *transport.CancellationError or the network error as
// received.
func (c *Client) Send(ctx context.Context, req transport.Request, intent auth.Intent, out any) error {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if err := c.resolver.Authorize(ctx, intent, req.Header); err != nil {
		return errors.Wrap(err, "Client.Send")
	}
	return c.transport.Do(ctx, req).Decode(out)
}
