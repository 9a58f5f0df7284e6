// Package identity carries the authenticated caller through a request.
//
// An Identity combines what is known about the user (id, email, role,
// permissions) with request details (the Authorization header that must be
// forwarded upstream and the client IP used in audit records).
//
// # Basic Usage
//
//	id := &identity.Identity{Authorization: r.Header.Get("Authorization")}
//	id.WithRemoteIP(identity.ParseRemoteIP(r.RemoteAddr))
//	ctx = identity.Set(ctx, id)
//
//	// later, in a handler
//	id, ok := identity.Get(r.Context())
//
// Admin routes fill in the user fields from the backend's whoami response.
// The local verify endpoint builds the Identity from token claims with
// FromClaims.
package identity
