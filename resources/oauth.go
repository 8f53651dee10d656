package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/pkg/errors"
)

// Certs reads the public keys that sign API tokens.
type Certs struct {
	resource
}

func NewCerts(requester Requester) Certs {
	return Certs{resource{requester: requester}}
}

func (c Certs) As() Certs {
	c.mode = auth.Impersonated
	return c
}

// GetPublicKey returns the key with the given kid.
func (c Certs) GetPublicKey(ctx context.Context, id string, options ...RequestOption) (*models.PublicKey, error) {
	var key models.PublicKey
	req := transport.Request{Method: http.MethodGet, Path: "oauth/certs/" + url.PathEscape(id)}
	if err := c.send(ctx, req, &key, options); err != nil {
		return nil, errors.Wrap(err, "Certs.GetPublicKey")
	}
	return &key, nil
}

// UserInfo reads OpenID Connect claims for the bearer token.
type UserInfo struct {
	resource
}

func NewUserInfo(requester Requester) UserInfo {
	return UserInfo{resource{requester: requester}}
}

func (u UserInfo) As() UserInfo {
	u.mode = auth.Impersonated
	return u
}

func (u UserInfo) GetToken(ctx context.Context, options ...RequestOption) (*models.UserInfo, error) {
	var info models.UserInfo
	req := transport.Request{Method: http.MethodGet, Path: "oauth/userinfo"}
	if err := u.send(ctx, req, &info, options); err != nil {
		return nil, errors.Wrap(err, "UserInfo.GetToken")
	}
	return &info, nil
}
