package fakeapi

const (
	RouteToken    = "/oauth/token"
	RouteCerts    = "/oauth/certs/{kid}"
	RouteUserInfo = "/oauth/userinfo"
	RouteProducts = "/v1/products"
	RouteProduct  = "/v1/products/{productID}"
)
