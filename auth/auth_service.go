// Package auth obtains tokens from the OrderCloud auth endpoint and decides
// which bearer token each API call carries.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/oauthmodel"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const tokenPath = "oauth/token"

// Doer sends a request through the shared transport.
type Doer interface {
	Do(ctx context.Context, req transport.Request) *transport.Result
}

var _ Doer = (*transport.Client)(nil)

// RequestOptions are per-call settings for token requests.
type RequestOptions struct {
	// RequestType labels the call in logs.
	RequestType string
	// AnonUserID is sent as anonuserid by Anonymous.
	AnonUserID string
	// Timeout overrides the configured timeout when positive.
	Timeout time.Duration
}

type RequestOption func(*RequestOptions)

func WithRequestType(requestType string) RequestOption {
	return func(o *RequestOptions) {
		o.RequestType = requestType
	}
}

func WithAnonUserID(anonUserID string) RequestOption {
	return func(o *RequestOptions) {
		o.AnonUserID = anonUserID
	}
}

func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// NewAnonUserID returns a random id for tracking an anonymous shopper.
func NewAnonUserID() string {
	return uuid.NewString()
}

// Service performs the OAuth2 grants supported by the API. It returns the
// token response and leaves storing it to the caller.
type Service struct {
	transport Doer
	logger    zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(transport Doer, options ...ServiceOption) (*Service, error) {
	if transport == nil {
		return nil, errors.New("[auth.NewService] transport is required")
	}
	s := &Service{
		transport: transport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login authenticates a user with the password grant.
func (s *Service) Login(ctx context.Context, username, password, clientID string, scope []oauth2.ApiRole, customRoles []string, options ...RequestOption) (*oauth2.AccessToken, error) {
	return s.grant(ctx, oauthmodel.TokenRequest{
		GrantType: oauth2.PasswordGrant,
		ClientID:  clientID,
		Username:  username,
		Password:  password,
		Scope:     oauthmodel.JoinScope(scope, customRoles),
	}, options)
}

// ElevatedLogin is Login with the client secret, for roles the client must
// be trusted with.
func (s *Service) ElevatedLogin(ctx context.Context, clientSecret, username, password, clientID string, scope []oauth2.ApiRole, customRoles []string, options ...RequestOption) (*oauth2.AccessToken, error) {
	return s.grant(ctx, oauthmodel.TokenRequest{
		GrantType:    oauth2.PasswordGrant,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
		Scope:        oauthmodel.JoinScope(scope, customRoles),
	}, options)
}

// ClientCredentials authenticates as the client's default context user.
func (s *Service) ClientCredentials(ctx context.Context, clientSecret, clientID string, scope []oauth2.ApiRole, customRoles []string, options ...RequestOption) (*oauth2.AccessToken, error) {
	return s.grant(ctx, oauthmodel.TokenRequest{
		GrantType:    oauth2.ClientCredentialsGrant,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        oauthmodel.JoinScope(scope, customRoles),
	}, options)
}

// RefreshToken exchanges a refresh token for a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken, clientID string) (*oauth2.AccessToken, error) {
	return s.grant(ctx, oauthmodel.TokenRequest{
		GrantType:    oauth2.RefreshTokenGrant,
		ClientID:     clientID,
		RefreshToken: refreshToken,
	}, []RequestOption{WithRequestType("RefreshToken")})
}

// Anonymous gets a token for an anonymous shopper. Pass WithAnonUserID to
// continue an existing anonymous session.
func (s *Service) Anonymous(ctx context.Context, clientID string, scope []oauth2.ApiRole, customRoles []string, options ...RequestOption) (*oauth2.AccessToken, error) {
	opts := applyOptions(options)
	return s.grant(ctx, oauthmodel.TokenRequest{
		GrantType:  oauth2.ClientCredentialsGrant,
		ClientID:   clientID,
		Scope:      oauthmodel.JoinScope(scope, customRoles),
		AnonUserID: opts.AnonUserID,
		Anonymous:  true,
	}, options)
}

func applyOptions(options []RequestOption) RequestOptions {
	var opts RequestOptions
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

func (s *Service) grant(ctx context.Context, req oauthmodel.TokenRequest, options []RequestOption) (*oauth2.AccessToken, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidGrant, "Service.grant: %v", err)
	}
	opts := applyOptions(options)

	result := s.transport.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        tokenPath,
		Form:        req.Values(),
		Timeout:     opts.Timeout,
		RequestType: opts.RequestType,
	})

	var token oauth2.AccessToken
	if err := result.Decode(&token); err != nil {
		s.logger.Debug().Err(err).
			Str("grant_type", string(req.GrantType)).
			Str("client_id", req.ClientID).
			Msg("token request failed")
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.Wrap(ErrNoTokenResponse, "Service.grant")
	}
	return &token, nil
}
