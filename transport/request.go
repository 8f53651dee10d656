package transport

import (
	"net/http"
	"net/url"
	"time"
)

// Request describes one API call relative to the configured base URL.
type Request struct {
	Method string
	// Path is appended to {baseURL}/{apiVersion}, or to {baseURL}/ when it
	// contains "oauth/".
	Path  string
	Query Query
	// Body is sent as JSON. Form takes precedence and is sent url-encoded.
	Body   any
	Form   url.Values
	Header http.Header
	// Timeout overrides the configured default when positive.
	Timeout time.Duration
	// RequestType labels the call in logs. It is never sent.
	RequestType string
}

// Kind tags the outcome of a call.
type Kind int

const (
	// KindOK is a 2xx response.
	KindOK Kind = iota
	// KindStatus is a non-2xx response.
	KindStatus
	// KindCancelled means the context was cancelled or timed out.
	KindCancelled
	// KindNetwork means no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindStatus:
		return "status"
	case KindCancelled:
		return "cancelled"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Result is the outcome of Client.Do. Body is fully read and the response
// body already closed.
type Result struct {
	Kind     Kind
	Request  *http.Request
	Response *http.Response
	Body     []byte
	Err      error
	Attempts int
}
