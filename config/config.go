// Package config holds the immutable per-client configuration of the SDK.
package config

import (
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	sdkerrors "github.com/jrsteele09/go-ordercloud/internal/errors"
)

const (
	DefaultBaseURL    = "https://api.ordercloud.io"
	DefaultAPIVersion = "v1"
	DefaultTimeout    = 60 * time.Second
	DefaultRetryDelay = time.Second
)

// ErrInvalidConfig is returned (wrapped) when a Config fails validation.
var ErrInvalidConfig = sdkerrors.ErrInvalidConfig

// CookieOptions controls how tokens are written when a cookie jar is the
// token storage medium.
type CookieOptions struct {
	Prefix   string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int // seconds, 0 means session cookie
}

// RetryOptions controls transport retries. MaxRetries of zero disables them.
type RetryOptions struct {
	MaxRetries int
	RetryDelay time.Duration // linear: RetryDelay * (attempt + 1)
	// RetryStatuses lists the HTTP statuses that are retried.
	RetryStatuses []int
}

// Config is frozen at construction. Use New or FromEnv to build one; there
// are no setters.
type Config struct {
	baseURL    string
	apiVersion string
	clientID   string
	timeout    time.Duration
	cookie     CookieOptions
	retry      RetryOptions
}

// Option configures a Config during construction.
type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithAPIVersion(version string) Option {
	return func(c *Config) {
		c.apiVersion = version
	}
}

func WithClientID(clientID string) Option {
	return func(c *Config) {
		c.clientID = clientID
	}
}

// WithTimeout sets the default per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

func WithCookieOptions(options CookieOptions) Option {
	return func(c *Config) {
		c.cookie = options
	}
}

func WithRetry(options RetryOptions) Option {
	return func(c *Config) {
		c.retry = options
	}
}

func defaults() Config {
	return Config{
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		timeout:    DefaultTimeout,
		cookie: CookieOptions{
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
		retry: RetryOptions{
			RetryDelay:    DefaultRetryDelay,
			RetryStatuses: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		},
	}
}

// New builds a validated Config from the defaults and the given options.
func New(options ...Option) (Config, error) {
	c := defaults()
	for _, opt := range options {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	err := validation.Errors{
		"baseURL":    validation.Validate(c.baseURL, validation.Required, is.RequestURL),
		"apiVersion": validation.Validate(c.apiVersion, validation.Required),
		"timeout":    validation.Validate(c.timeout, validation.By(nonNegativeDuration)),
		"retryDelay": validation.Validate(c.retry.RetryDelay, validation.By(nonNegativeDuration)),
		"maxRetries": validation.Validate(c.retry.MaxRetries, validation.Min(0)),
	}.Filter()
	if err != nil {
		return sdkerrors.Wrapf(ErrInvalidConfig, "%s", err.Error())
	}
	return nil
}

func nonNegativeDuration(value interface{}) error {
	if d, _ := value.(time.Duration); d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func (c Config) GetBaseURL() string {
	return c.baseURL
}

func (c Config) GetAPIVersion() string {
	return c.apiVersion
}

func (c Config) GetClientID() string {
	return c.clientID
}

func (c Config) GetTimeout() time.Duration {
	return c.timeout
}

func (c Config) GetCookieOptions() CookieOptions {
	return c.cookie
}

// GetRetry returns a copy of the retry options.
func (c Config) GetRetry() RetryOptions {
	r := c.retry
	r.RetryStatuses = append([]int(nil), c.retry.RetryStatuses...)
	return r
}
