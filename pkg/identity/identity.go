package identity

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the caller of a request.
//
// It is populated in stages: the bearer middleware records the raw
// Authorization header, and the admin check or local token verification fills
// in the user fields.
type Identity struct {
	UserID      string
	Email       string
	Role        string
	Permissions []string
	ExpiresAt   time.Time

	// Authorization is the inbound header, forwarded verbatim upstream.
	Authorization string
	RemoteIP      net.IP
}

// FromClaims creates an Identity from locally verified token claims.
func FromClaims(c *token.Claims, authorization string) *Identity {
	id := &Identity{
		UserID:        c.Identity().ID,
		Email:         c.Email,
		Role:          c.Role,
		Permissions:   c.Permissions,
		Authorization: authorization,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// HasRole reports whether the caller's role is one of roles.
func (i *Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if strings.EqualFold(i.Role, r) {
			return true
		}
	}
	return false
}

// Subject returns the best available label for audit records.
func (i *Identity) Subject() string {
	switch {
	case i.Email != "":
		return i.Email
	case i.UserID != "":
		return i.UserID
	default:
		return "anonymous"
	}
}

// ParseRemoteIP extracts the client IP from an http.Request RemoteAddr value.
func ParseRemoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
