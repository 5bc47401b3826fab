// Package gateway implements the authenticating reverse proxy: bearer
// extraction, local token verification, remote revocation checks, route
// authorization and identity header injection.
package gateway

// Identity headers injected into upstream requests after verification. Any
// inbound value for these headers is stripped first, so upstreams can trust
// them unconditionally.
const (
	HeaderUserName   = "X-User-Name"
	HeaderUserID     = "X-User-Id"
	HeaderUserRole   = "X-User-Role"
	HeaderUserModule = "X-User-Module"
	HeaderAccountID  = "X-Account-Id"
)

// identityHeaders lists every header the filter owns.
var identityHeaders = []string{
	HeaderUserName,
	HeaderUserID,
	HeaderUserRole,
	HeaderUserModule,
	HeaderAccountID,
}
