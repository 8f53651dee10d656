package client

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/jrsteele09/go-ordercloud/token/redisrepo"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type settings struct {
	httpClient *http.Client
	jar        http.CookieJar
	redis      redis.UniversalClient
	redisOpts  []redisrepo.Option
	repo       token.Repo
	env        token.Environment
	logger     zerolog.Logger
	nowFunc    func() time.Time
	transport  []transport.Option
}

type Option func(*settings)

// WithHTTPClient sets the client used for every request, including token
// requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

// WithCookieJar persists the TokenSet as cookies scoped to the base URL.
func WithCookieJar(jar http.CookieJar) Option {
	return func(s *settings) {
		s.jar = jar
	}
}

// WithRedis persists the TokenSet in Redis, shared by every process using
// the same client id.
func WithRedis(client redis.UniversalClient, options ...redisrepo.Option) Option {
	return func(s *settings) {
		s.redis = client
		s.redisOpts = options
	}
}

// WithTokenRepo persists the TokenSet in a custom medium.
func WithTokenRepo(repo token.Repo, env token.Environment) Option {
	return func(s *settings) {
		s.repo = repo
		s.env = env
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *settings) {
		s.nowFunc = now
	}
}

// WithTransportOptions passes middleware and interceptors to the transport.
func WithTransportOptions(options ...transport.Option) Option {
	return func(s *settings) {
		s.transport = append(s.transport, options...)
	}
}
