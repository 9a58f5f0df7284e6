package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/identity"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

const (
	MissingTokenMessage  = "Authorization token required"
	InvalidHeaderMessage = "Invalid authorization header"
	InvalidTokenMessage  = "Invalid or expired token"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// requestIdentity returns the identity already attached to r, or a new one
// carrying the request's Authorization header and client IP.
func requestIdentity(r *http.Request) *identity.Identity {
	if id, ok := identity.Get(r.Context()); ok {
		return id
	}
	id := &identity.Identity{Authorization: r.Header.Get("Authorization")}
	return id.WithRemoteIP(identity.ParseRemoteIP(r.RemoteAddr))
}

// RequireBearer rejects requests without a well-formed bearer Authorization
// header. The token itself is not verified here; the backend does that.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			proxy.Error(w, http.StatusUnauthorized, MissingTokenMessage)
			return
		}
		if _, ok := BearerToken(header); !ok {
			proxy.Error(w, http.StatusUnauthorized, InvalidHeaderMessage)
			return
		}

		id := requestIdentity(r)
		id.Authorization = header
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// RequireAccessToken verifies the bearer token locally as an access token
// issued by this service.
func RequireAccessToken(issuer *token.Issuer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				proxy.Error(w, http.StatusUnauthorized, MissingTokenMessage)
				return
			}
			raw, ok := BearerToken(header)
			if !ok {
				proxy.Error(w, http.StatusUnauthorized, InvalidHeaderMessage)
				return
			}
			claims, err := issuer.VerifyAccess(raw)
			if err != nil {
				proxy.Error(w, http.StatusUnauthorized, InvalidTokenMessage)
				return
			}

			id := identity.FromClaims(claims, header)
			id.WithRemoteIP(identity.ParseRemoteIP(r.RemoteAddr))
			next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
		})
	}
}
