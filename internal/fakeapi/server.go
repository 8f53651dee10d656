// Package fakeapi is an in-memory stand-in for the OrderCloud API: the auth
// endpoint, the certs and userinfo endpoints, and the products resource. It
// signs real RS256 tokens so the SDK's verifier can be exercised end to end.
package fakeapi

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultTokenTTL = 10 * time.Hour
	issuer          = "https://fakeapi.ordercloud.test"
)

type Server struct {
	mux      *http.ServeMux
	key      *rsa.PrivateKey
	kid      string
	clientID string
	secret   string
	tokenTTL time.Duration
	nowFunc  func() time.Time
	logger   zerolog.Logger

	seedUsers []credential

	lock          sync.RWMutex
	users         map[string]string // username to bcrypt hash
	refreshTokens map[string]refreshGrant
	products      map[string]models.Product
	grants        map[oauth2.GrantType]int
}

type Option func(*Server)

// WithClientID restricts token requests to one client id.
func WithClientID(clientID string) Option {
	return func(s *Server) {
		s.clientID = clientID
	}
}

// WithClientSecret enables the client_credentials grant and elevated logins.
func WithClientSecret(secret string) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithUser adds a user accepted by the password grant.
func WithUser(username, password string) Option {
	return func(s *Server) {
		s.seedUsers = append(s.seedUsers, credential{username: username, password: password})
	}
}

func WithProducts(products ...models.Product) Option {
	return func(s *Server) {
		for _, p := range products {
			s.products[p.ID] = p
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(options ...Option) (*Server, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "[fakeapi.New] generating signing key")
	}
	s := &Server{
		mux:           http.NewServeMux(),
		key:           key,
		kid:           uuid.NewString(),
		tokenTTL:      defaultTokenTTL,
		nowFunc:       time.Now,
		logger:        zerolog.Nop(),
		users:         make(map[string]string),
		refreshTokens: make(map[string]refreshGrant),
		products:      make(map[string]models.Product),
		grants:        make(map[oauth2.GrantType]int),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.registerUsers(s.seedUsers); err != nil {
		return nil, errors.Wrap(err, "[fakeapi.New]")
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	s.mux.Handle("POST "+RouteToken, ChainMiddleware(s.TokenHandler(), s.apiMiddleware()...))
	s.mux.Handle("GET "+RouteCerts, ChainMiddleware(s.CertsHandler(), s.apiMiddleware()...))
	s.mux.Handle("GET "+RouteUserInfo, ChainMiddleware(s.UserInfoHandler(), s.apiMiddleware(s.RequireBearer)...))

	s.mux.Handle("GET "+RouteProducts, ChainMiddleware(s.ListProductsHandler(), s.apiMiddleware(s.RequireBearer)...))
	s.mux.Handle("POST "+RouteProducts, ChainMiddleware(s.CreateProductHandler(), s.apiMiddleware(s.RequireBearer)...))
	s.mux.Handle("GET "+RouteProduct, ChainMiddleware(s.GetProductHandler(), s.apiMiddleware(s.RequireBearer)...))
	s.mux.Handle("PUT "+RouteProduct, ChainMiddleware(s.SaveProductHandler(), s.apiMiddleware(s.RequireBearer)...))
	s.mux.Handle("PATCH "+RouteProduct, ChainMiddleware(s.PatchProductHandler(), s.apiMiddleware(s.RequireBearer)...))
	s.mux.Handle("DELETE "+RouteProduct, ChainMiddleware(s.DeleteProductHandler(), s.apiMiddleware(s.RequireBearer)...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// KeyID is the kid of the signing key served at /oauth/certs/{kid}.
func (s *Server) KeyID() string {
	return s.kid
}

// Grants returns how many successful token requests used grantType.
func (s *Server) Grants(grantType oauth2.GrantType) int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.grants[grantType]
}

// Product returns a stored product.
func (s *Server) Product(id string) (models.Product, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.products[id]
	return p, ok
}
