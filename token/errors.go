package token

import (
	"fmt"

	sdkerrors "github.com/jrsteele09/go-ordercloud/internal/errors"
)

var (
	ErrInvalidToken   = sdkerrors.ErrInvalidToken
	ErrMalformedToken = sdkerrors.ErrMalformedToken
)

// InvalidTokenError is returned by Validator.Decode when a token cannot be
// decoded into claims.
type InvalidTokenError struct {
	Reason string
	Err    error
}

func (e *InvalidTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid token: %s: %v", e.Reason, e.Err)
	}
	return "invalid token: " + e.Reason
}

func (e *InvalidTokenError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidToken}
	}
	return []error{ErrInvalidToken, e.Err}
}

// MalformedTokenError is returned by Store.Set when an access or
// impersonation token is not decodable. The token is not stored.
type MalformedTokenError struct {
	Kind Kind
	Err  error
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Kind, e.Err)
}

func (e *MalformedTokenError) Unwrap() []error {
	return []error{ErrMalformedToken, e.Err}
}
