package auth

// Mode selects the token slot used for a call.
type Mode int

const (
	// Normal uses the access token.
	Normal Mode = iota
	// Impersonated uses the impersonation token.
	Impersonated
)

func (m Mode) String() string {
	if m == Impersonated {
		return "impersonated"
	}
	return "normal"
}

// Intent is the authentication part of a call.
type Intent struct {
	// AccessToken, when set, is sent verbatim and never checked or refreshed.
	AccessToken string
	Mode        Mode
}
