package token

// Kind identifies one of the token slots held for a client instance.
type Kind int

const (
	AccessToken Kind = iota
	RefreshToken
	ImpersonationToken
	IdentityToken
	IdpAccessToken // identity-provider access token
)

// Kinds lists every slot in a TokenSet.
var Kinds = []Kind{AccessToken, RefreshToken, ImpersonationToken, IdentityToken, IdpAccessToken}

// String returns the storage purpose of the slot.
func (k Kind) String() string {
	switch k {
	case AccessToken:
		return "access_token"
	case RefreshToken:
		return "refresh_token"
	case ImpersonationToken:
		return "impersonation_token"
	case IdentityToken:
		return "identity_token"
	case IdpAccessToken:
		return "idp_access_token"
	}
	return "unknown_token"
}

// requiresDecode reports whether tokens of this kind must be decodable
// before they are stored.
func (k Kind) requiresDecode() bool {
	return k == AccessToken || k == ImpersonationToken
}
