package auth

import (
	"errors"

	"github.com/jrsteele09/go-ordercloud/oauthmodel"
)

var (
	ErrInvalidGrant = oauthmodel.ErrInvalidGrant
	// ErrNoTokenResponse is returned when the auth endpoint answers 2xx
	// without an access token.
	ErrNoTokenResponse = errors.New("token response has no access token")
)
