// Package apierror turns non-2xx responses from the OrderCloud API into a
// single typed error.
package apierror

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultErrorCode is used when the response carries no API error list.
	DefaultErrorCode = "OrderCloudError"
	// NotFoundCode is the ErrorCode the API uses for missing objects.
	NotFoundCode = "NotFound"

	maxTextLength = 200
	unknownError  = "Unknown error"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detail is one entry of the API's Errors list.
type Detail struct {
	ErrorCode string          `json:"ErrorCode"`
	Message   string          `json:"Message"`
	Data      json.RawMessage `json:"Data,omitempty"`
}

// NotFoundData is the Data payload of a NotFound error.
type NotFoundData struct {
	ObjectType string `json:"ObjectType"`
	ObjectID   string `json:"ObjectID"`
}

type errorBody struct {
	Errors []Detail `json:"Errors"`
}

// Error is returned for every non-2xx response from a resource or auth call.
type Error struct {
	Message    string
	ErrorCode  string
	Errors     []Detail
	Status     int
	StatusText string
	// Text is the raw body when it was not an API error document.
	Text     string
	Request  *http.Request
	Response *http.Response
}

func (e *Error) Error() string {
	return fmt.Sprintf("ordercloud: %d %s: %s", e.Status, e.ErrorCode, e.Message)
}

// NotFound reports whether the first API error is a NotFound.
func (e *Error) NotFound() bool {
	return e.ErrorCode == NotFoundCode
}

// FromResponse builds an Error from a failed response and its already read
// body. resp may be nil when no response was received.
func FromResponse(req *http.Request, resp *http.Response, body []byte) *Error {
	e := &Error{
		ErrorCode: DefaultErrorCode,
		Request:   req,
		Response:  resp,
	}
	if resp != nil {
		e.Status = resp.StatusCode
		e.StatusText = http.StatusText(resp.StatusCode)
	}

	body = bytes.TrimPrefix(body, utf8BOM)
	if len(bytes.TrimSpace(body)) > 0 {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			e.Errors = parsed.Errors
		} else {
			e.Text = string(body)
		}
	}

	if len(e.Errors) > 0 {
		first := e.Errors[0]
		if first.ErrorCode != "" {
			e.ErrorCode = first.ErrorCode
		}
		e.Message = messageFor(first)
		return e
	}
	e.Message = e.fallbackMessage()
	return e
}

func messageFor(d Detail) string {
	if d.ErrorCode == NotFoundCode {
		var data NotFoundData
		if err := json.Unmarshal(d.Data, &data); err == nil {
			return fmt.Sprintf("%s %s not found", data.ObjectType, data.ObjectID)
		}
	}
	return d.Message
}

func (e *Error) fallbackMessage() string {
	if text := strings.TrimSpace(e.Text); text != "" {
		if utf8.RuneCountInString(text) > maxTextLength {
			return string([]rune(text)[:maxTextLength]) + "..."
		}
		return text
	}
	if e.StatusText != "" {
		return e.StatusText
	}
	return unknownError
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an API NotFound error.
func IsNotFound(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.NotFound()
}
