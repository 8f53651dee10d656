package models

// PublicKey is a JSON Web Key published by the certs endpoint for verifying
// tokens issued by the API.
type PublicKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// UserInfo is the OpenID Connect userinfo response for the bearer token.
type UserInfo struct {
	Sub               string `json:"sub"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	ClientID          string `json:"cid,omitempty"`
	UserType          string `json:"usrtype,omitempty"`
}
