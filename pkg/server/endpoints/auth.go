package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/identity"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server/middleware"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

const (
	msgInvalidBody         = "Invalid request body"
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgAccountDeactivated  = "Account is deactivated"
	msgLoginSuccessful     = "Login successful"
	msgRefreshRequired     = "Refresh token is required"
	msgInvalidRefresh      = "Invalid or expired refresh token"
	msgRefreshUnsupported  = "Token refresh is not supported"
	msgTokenRefreshed      = "Token refreshed successfully"
	msgLoggedOut           = "Logged out successfully"
	msgTokenValid          = "Token is valid"
)

// UserResponse is the public view of an administrator.
type UserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
}

// RefreshResponse is the data of a successful token refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// VerifyResponse describes a valid access token.
type VerifyResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterAuthEndpoints registers login, refresh, logout and verify.
func RegisterAuthEndpoints(s *server.Server) {
	s.Router.Handle("/api/auth/login", handleLogin(s)).Methods("POST")
	s.Router.Handle("/api/auth/refresh", handleRefresh(s)).Methods("POST")
	s.Router.Handle("/api/auth/logout", handleLogout(s)).Methods("POST")
	s.Router.Handle("/api/auth/verify", middleware.RequireAccessToken(s.Issuer)(handleVerify())).Methods("GET")
}

func userResponse(u *directory.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Permissions: u.Permissions,
	}
}

func clientIP(r *http.Request) string {
	if ip := identity.ParseRemoteIP(r.RemoteAddr); ip != nil {
		return ip.String()
	}
	return r.RemoteAddr
}

// issuePair returns a fresh access and refresh token for u.
func issuePair(issuer *token.Issuer, u *directory.User) (string, string, error) {
	access, err := issuer.IssueAccessToken(token.Subject{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: u.Permissions,
	})
	if err != nil {
		return "", "", err
	}
	refresh, err := issuer.IssueRefreshToken(u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			proxy.Error(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Password == "" {
			proxy.Error(w, http.StatusBadRequest, msgCredentialsRequired)
			return
		}

		event := audit.LoginEvent{Email: email, ClientIP: clientIP(r)}
		fail := func(status int, message string) {
			event.Reason = message
			audit.Log(event)
			proxy.Error(w, status, message)
		}

		user, err := s.Directory.FindByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				fail(http.StatusUnauthorized, msgInvalidCredentials)
				return
			}
			s.Log.Errorw("directory lookup failed", "email", email, "error", err)
			proxy.Error(w, http.StatusInternalServerError, proxy.InternalErrorMessage)
			return
		}
		event.UserID = user.ID

		if !directory.CheckPassword(user, req.Password) {
			fail(http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		if !user.IsActive {
			fail(http.StatusForbidden, msgAccountDeactivated)
			return
		}

		access, refresh, err := issuePair(s.Issuer, user)
		if err != nil {
			s.Log.Errorw("failed to issue tokens", "user", user.ID, "error", err)
			proxy.Error(w, http.StatusInternalServerError, proxy.InternalErrorMessage)
			return
		}

		event.Success = true
		audit.Log(event)
		s.Log.Infow("admin logged in", "user", user.ID)

		proxy.Success(w, msgLoginSuccessful, LoginResponse{
			User:         userResponse(user),
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int(s.Issuer.AccessTTL().Seconds()),
		})
	}
}

func handleRefresh(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			proxy.Error(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if strings.TrimSpace(req.RefreshToken) == "" {
			proxy.Error(w, http.StatusBadRequest, msgRefreshRequired)
			return
		}

		event := audit.RefreshEvent{ClientIP: clientIP(r)}
		fail := func(status int, message string) {
			event.Reason = message
			audit.Log(event)
			proxy.Error(w, status, message)
		}

		claims, err := s.Issuer.VerifyRefresh(strings.TrimSpace(req.RefreshToken))
		if err != nil {
			fail(http.StatusUnauthorized, msgInvalidRefresh)
			return
		}
		event.UserID = claims.Identity().ID

		resolver, ok := s.Directory.(directory.Resolver)
		if !ok {
			fail(http.StatusNotImplemented, msgRefreshUnsupported)
			return
		}
		user, err := resolver.FindByID(r.Context(), event.UserID)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				fail(http.StatusUnauthorized, msgInvalidRefresh)
				return
			}
			s.Log.Errorw("directory lookup failed", "user", event.UserID, "error", err)
			proxy.Error(w, http.StatusInternalServerError, proxy.InternalErrorMessage)
			return
		}
		if !user.IsActive {
			fail(http.StatusUnauthorized, msgInvalidRefresh)
			return
		}

		access, refresh, err := issuePair(s.Issuer, user)
		if err != nil {
			s.Log.Errorw("failed to issue tokens", "user", user.ID, "error", err)
			proxy.Error(w, http.StatusInternalServerError, proxy.InternalErrorMessage)
			return
		}

		event.Success = true
		audit.Log(event)

		proxy.Success(w, msgTokenRefreshed, RefreshResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int(s.Issuer.AccessTTL().Seconds()),
		})
	}
}

// handleLogout acknowledges a logout. Tokens stay valid until they expire;
// the client is expected to discard them.
func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event := audit.LogoutEvent{ClientIP: clientIP(r)}
		if raw, ok := middleware.BearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := s.Issuer.VerifyAccess(raw); err == nil {
				event.User = claims.Email
			}
		}
		audit.Log(event)

		proxy.Success(w, msgLoggedOut, nil)
	}
}

func handleVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			proxy.Error(w, http.StatusUnauthorized, middleware.InvalidTokenMessage)
			return
		}

		proxy.Success(w, msgTokenValid, VerifyResponse{
			User: UserResponse{
				ID:          id.UserID,
				Email:       id.Email,
				Role:        id.Role,
				Permissions: id.Permissions,
			},
			ExpiresAt: id.ExpiresAt,
		})
	}
}
