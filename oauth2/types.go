package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
// Determines which credentials accompany the request.
type GrantType string

const (
	// PasswordGrant authenticates a registered (human) user.
	// Token request includes: username, password, client_id, scope, and client_secret for elevated logins
	// Returns: access_token, refresh_token (when enabled for the client)
	PasswordGrant GrantType = "password"

	// ClientCredentialsGrant authenticates the client itself.
	// Used in: Backend integrations (with client_secret) and anonymous shopping (without)
	// Token request includes: client_id, client_secret (optional), scope, anonuserid (optional)
	// Returns: access_token
	ClientCredentialsGrant GrantType = "client_credentials"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Used in: Transparent session extension by the SDK
	// Token request includes: refresh_token, client_id
	// Returns: new access_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// ApiRole is a security role that may be requested as part of a token's scope.
type ApiRole string

const (
	FullAccess             ApiRole = "FullAccess"
	AddressAdmin           ApiRole = "AddressAdmin"
	AddressReader          ApiRole = "AddressReader"
	BuyerAdmin             ApiRole = "BuyerAdmin"
	BuyerReader            ApiRole = "BuyerReader"
	BuyerUserAdmin         ApiRole = "BuyerUserAdmin"
	BuyerUserReader        ApiRole = "BuyerUserReader"
	CatalogAdmin           ApiRole = "CatalogAdmin"
	CatalogReader          ApiRole = "CatalogReader"
	MeAdmin                ApiRole = "MeAdmin"
	MeAddressAdmin         ApiRole = "MeAddressAdmin"
	MeXpAdmin              ApiRole = "MeXpAdmin"
	OrderAdmin             ApiRole = "OrderAdmin"
	OrderReader            ApiRole = "OrderReader"
	PasswordReset          ApiRole = "PasswordReset"
	ProductAdmin           ApiRole = "ProductAdmin"
	ProductReader          ApiRole = "ProductReader"
	Shopper                ApiRole = "Shopper"
	SupplierAdmin          ApiRole = "SupplierAdmin"
	SupplierReader         ApiRole = "SupplierReader"
	WebhookAdmin           ApiRole = "WebhookAdmin"
	WebhookReader          ApiRole = "WebhookReader"
	IntegrationEventAdmin  ApiRole = "IntegrationEventAdmin"
	IntegrationEventReader ApiRole = "IntegrationEventReader"
)

// Strings converts roles to their wire representation.
func Strings(roles []ApiRole) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
