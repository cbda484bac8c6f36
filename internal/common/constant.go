// Package common contains shared constants, sentinel errors and small helpers
// used by both the SecretKey client and the development backend.
package common

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// API routes shared by the HTTP client and the development backend.
const (
	RouteRegister       = "/api/auth/register"
	RouteLogin          = "/api/auth/login"
	RouteHealth         = "/api/health"
	RoutePlatforms      = "/v1/secret-key/platform/"
	RoutePlatformByName = "/v1/secret-key/platform/name"
	RouteExportExcel    = "/v1/secret-key/platform/export/excel"
	RouteExportPDF      = "/v1/secret-key/platform/export/pdf"
)

// DefaultPageSize is the number of records shown per page.
const DefaultPageSize = 9
