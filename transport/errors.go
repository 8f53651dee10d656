package transport

import (
	sdkerrors "github.com/jrsteele09/go-ordercloud/internal/errors"
)

var ErrCancelled = sdkerrors.ErrCancelled

// CancellationError is returned when the call's context is cancelled or its
// timeout elapses. It is never retried and never normalized into an API error.
type CancellationError struct {
	Method string
	URL    string
	Err    error
}

func (e *CancellationError) Error() string {
	return "request cancelled: " + e.Method + " " + e.URL + ": " + e.Err.Error()
}

func (e *CancellationError) Unwrap() []error {
	return []error{ErrCancelled, e.Err}
}

// InterceptorError is returned when a request or response interceptor
// rejects a call. It is not retried.
type InterceptorError struct {
	Err error
}

func (e *InterceptorError) Error() string {
	return "interceptor rejected request: " + e.Err.Error()
}

func (e *InterceptorError) Unwrap() error {
	return e.Err
}
