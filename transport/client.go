// Package transport sends API requests: URL building, query serialization,
// retries, timeouts and interceptors. It knows nothing about tokens; callers
// put the Authorization header on the Request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ordercloud/config"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

var errRetryable = errors.New("retryable result")

// RoundTripFunc sends a single HTTP request.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// Middleware wraps the send of every attempt.
type Middleware func(next RoundTripFunc) RoundTripFunc

// RequestInterceptor returns middleware that may modify or reject each
// outgoing request.
func RequestInterceptor(fn func(*http.Request) error) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(r *http.Request) (*http.Response, error) {
			if err := fn(r); err != nil {
				return nil, &InterceptorError{Err: err}
			}
			return next(r)
		}
	}
}

// ResponseInterceptor returns middleware that may inspect or reject each
// received response.
func ResponseInterceptor(fn func(*http.Response) error) Middleware {
	return func(next RoundTripFunc) RoundTripFunc {
		return func(r *http.Request) (*http.Response, error) {
			resp, err := next(r)
			if err != nil {
				return resp, err
			}
			if err := fn(resp); err != nil {
				_ = resp.Body.Close()
				return nil, &InterceptorError{Err: err}
			}
			return resp, nil
		}
	}
}

// chain applies middleware so that the first one listed runs first.
func chain(send RoundTripFunc, mw ...Middleware) RoundTripFunc {
	chained := send
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	timeout    time.Duration
	retry      config.RetryOptions
	middleware []Middleware
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMiddleware appends middleware, run in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

func WithRequestInterceptor(fn func(*http.Request) error) Option {
	return WithMiddleware(RequestInterceptor(fn))
}

func WithResponseInterceptor(fn func(*http.Response) error) Option {
	return WithMiddleware(ResponseInterceptor(fn))
}

func New(cfg config.Config, options ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimSuffix(cfg.GetBaseURL(), "/"),
		apiVersion: cfg.GetAPIVersion(),
		timeout:    cfg.GetTimeout(),
		retry:      cfg.GetRetry(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// URL returns the absolute URL for path. OAuth paths are not versioned.
func (c *Client) URL(path string) string {
	if strings.Contains(path, "oauth/") {
		return c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + "/" + c.apiVersion + path
}

// Do sends the request, retrying as configured, and always returns a Result.
func (c *Client) Do(ctx context.Context, req Request) *Result {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.URL(req.Path)
	if q := req.Query.Encode(); q != "" {
		target += "?" + q
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return &Result{Kind: KindNetwork, Err: pkgerrors.Wrap(err, "Client.Do encode body")}
	}

	logger := c.logger.With().
		Str("correlation_id", uuid.NewString()).
		Str("method", req.Method).
		Str("url", target).
		Str("request_type", req.RequestType).
		Logger()

	send := chain(c.httpClient.Do, c.middleware...)
	started := time.Now()
	attempts := 0
	var result *Result

	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempts++
		result = c.attempt(ctx, send, req, target, body, contentType)
		if attempts <= c.retry.MaxRetries && c.shouldRetry(result) {
			logger.Debug().Int("attempt", attempts).Str("kind", result.Kind.String()).Msg("retrying request")
			return retry.RetryableError(errRetryable)
		}
		return nil
	})
	if result == nil || (err != nil && ctx.Err() != nil) {
		result = cancelled(req.Method, target, ctx.Err())
	}
	result.Attempts = attempts

	event := logger.Debug()
	if result.Kind == KindNetwork {
		event = logger.Warn().Err(result.Err)
	}
	if result.Response != nil {
		event = event.Int("status", result.Response.StatusCode)
	}
	event.Str("kind", result.Kind.String()).
		Int("attempts", attempts).
		Dur("duration", time.Since(started)).
		Msg("ordercloud request")

	return result
}

func (c *Client) attempt(ctx context.Context, send RoundTripFunc, req Request, target string, body []byte, contentType string) *Result {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return &Result{Kind: KindNetwork, Err: pkgerrors.Wrap(err, "Client.Do build request")}
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("Content-Type", contentType)
	for name, values := range req.Header {
		httpReq.Header.Del(name)
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	resp, err := send(httpReq)
	if err != nil {
		if isCancellation(ctx, err) {
			return cancelled(req.Method, target, err)
		}
		return &Result{Kind: KindNetwork, Request: httpReq, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isCancellation(ctx, err) {
			return cancelled(req.Method, target, err)
		}
		return &Result{Kind: KindNetwork, Request: httpReq, Response: resp, Err: err}
	}

	kind := KindOK
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind = KindStatus
	}
	return &Result{Kind: kind, Request: httpReq, Response: resp, Body: data}
}

func (c *Client) shouldRetry(r *Result) bool {
	switch r.Kind {
	case KindNetwork:
		var rejected *InterceptorError
		return !errors.As(r.Err, &rejected)
	case KindStatus:
		return slices.Contains(c.retry.RetryStatuses, r.Response.StatusCode)
	}
	return false
}

// backoff waits RetryDelay * (attempt + 1) before each retry.
func (c *Client) backoff() retry.Backoff {
	retries := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		retries++
		return c.retry.RetryDelay * time.Duration(retries), false
	})
	maxRetries := c.retry.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.WithMaxRetries(uint64(maxRetries), linear)
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.Form != nil {
		return []byte(req.Form.Encode()), contentTypeForm, nil
	}
	if req.Body == nil {
		return nil, contentTypeJSON, nil
	}
	if raw, ok := req.Body.(json.RawMessage); ok {
		return raw, contentTypeJSON, nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return data, contentTypeJSON, nil
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cancelled(method, target string, err error) *Result {
	if err == nil {
		err = context.Canceled
	}
	return &Result{
		Kind: KindCancelled,
		Err:  &CancellationError{Method: method, URL: target, Err: err},
	}
}
