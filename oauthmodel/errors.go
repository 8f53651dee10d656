package oauthmodel

import (
	sdkerrors "github.com/jrsteele09/go-ordercloud/internal/errors"
)

var (
	ErrInvalidGrant = sdkerrors.ErrInvalidGrant
)
