package oauthmodel

import (
	"strings"

	"github.com/jrsteele09/go-ordercloud/oauth2"
)

// JoinScope builds the space delimited scope parameter from the requested
// roles and custom roles.
//
//	scope only         -> "BuyerAdmin WebhookAdmin"
//	custom roles only  -> " InventoryAdmin" (leading space, wire compatible)
//	both               -> "BuyerAdmin WebhookAdmin InventoryAdmin"
//	neither            -> "" (scope omitted, all assigned roles are granted)
func JoinScope(scope []oauth2.ApiRole, customRoles []string) string {
	switch {
	case len(scope) > 0 && len(customRoles) == 0:
		return strings.Join(oauth2.Strings(scope), " ")
	case len(scope) == 0 && len(customRoles) > 0:
		return " " + strings.Join(customRoles, " ")
	case len(scope) > 0 && len(customRoles) > 0:
		return strings.Join(oauth2.Strings(scope), " ") + " " + strings.Join(customRoles, " ")
	}
	return ""
}
