// Package resources holds the per-endpoint API wrappers. Each method builds
// a path and hands the call to the client's authenticated pipeline.
package resources

import (
	"context"
	"time"

	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/jrsteele09/go-ordercloud/transport"
)

// Requester resolves the bearer token for intent, sends req and decodes a
// successful body into out.
type Requester interface {
	Send(ctx context.Context, req transport.Request, intent auth.Intent, out any) error
}

// RequestOptions are per-call settings.
type RequestOptions struct {
	// AccessToken is sent instead of the stored token and is never refreshed.
	AccessToken string
	// RequestType labels the call in logs.
	RequestType string
	// Timeout overrides the configured timeout when positive.
	Timeout time.Duration
}

type RequestOption func(*RequestOptions)

func WithAccessToken(accessToken string) RequestOption {
	return func(o *RequestOptions) {
		o.AccessToken = accessToken
	}
}

func WithRequestType(requestType string) RequestOption {
	return func(o *RequestOptions) {
		o.RequestType = requestType
	}
}

func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// resource is embedded by value in every wrapper, so As() copies never
// affect the original.
type resource struct {
	requester Requester
	mode      auth.Mode
}

func (r resource) send(ctx context.Context, req transport.Request, out any, options []RequestOption) error {
	var opts RequestOptions
	for _, opt := range options {
		opt(&opts)
	}
	req.Timeout = opts.Timeout
	req.RequestType = opts.RequestType
	return r.requester.Send(ctx, req, auth.Intent{AccessToken: opts.AccessToken, Mode: r.mode}, out)
}
