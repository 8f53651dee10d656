package oauthmodel

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jrsteele09/go-ordercloud/oauth2"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the /oauth/token endpoint.
// Supports the grant types: password, client_credentials, refresh_token
type TokenRequest struct {
	// GrantType selects the authentication workflow.
	// Required: Yes
	GrantType oauth2.GrantType

	// ClientID identifies the API client the user is logging into.
	// Required: Yes (for all grant types)
	ClientID string

	// ClientSecret is the secret credential for confidential clients.
	// Required: Yes for client_credentials of a backend system and for elevated logins
	// Security: Never log or expose this value
	ClientSecret string

	// Username and Password authenticate a registered user.
	// Required: Yes (only for password grant)
	Username string
	Password string

	// RefreshToken is exchanged for a new access token.
	// Required: Yes (only for refresh_token grant)
	RefreshToken string

	// Scope is the space separated role list, see JoinScope.
	// Required: No (all assigned roles are granted when omitted)
	Scope string

	// AnonUserID is an externally generated id tracking an anonymous session.
	// Required: No (only meaningful for anonymous client_credentials)
	AnonUserID string

	// Anonymous marks a client_credentials request that carries no secret.
	Anonymous bool
}

// Validate checks the fields required by the request's grant type.
func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GrantType, validation.Required, validation.In(
			oauth2.PasswordGrant, oauth2.ClientCredentialsGrant, oauth2.RefreshTokenGrant,
		)),
		validation.Field(&r.ClientID, validation.Required),
		validation.Field(&r.Username, requiredIf(r.GrantType == oauth2.PasswordGrant)...),
		validation.Field(&r.Password, requiredIf(r.GrantType == oauth2.PasswordGrant)...),
		validation.Field(&r.ClientSecret, requiredIf(r.GrantType == oauth2.ClientCredentialsGrant && !r.Anonymous)...),
		validation.Field(&r.RefreshToken, requiredIf(r.GrantType == oauth2.RefreshTokenGrant)...),
	)
}

func requiredIf(condition bool) []validation.Rule {
	if condition {
		return []validation.Rule{validation.Required}
	}
	return nil
}

// Values encodes the request as form values. Empty fields are omitted, the
// scope is kept verbatim (including a leading space) when set.
func (r TokenRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(r.GrantType))
	v.Set("client_id", r.ClientID)
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("username", r.Username)
	set("password", r.Password)
	set("client_secret", r.ClientSecret)
	set("refresh_token", r.RefreshToken)
	set("scope", r.Scope)
	set("anonuserid", r.AnonUserID)
	return v
}
