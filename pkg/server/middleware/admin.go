package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/identity"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/proxy"
)

// AdminRequiredMessage is returned when the caller is authenticated but not an admin.
const AdminRequiredMessage = "Admin access required"

// RequireAdmin asks the backend who the caller is and admits only the given
// roles ("admin" when none are given). Backend rejections are mirrored.
func RequireAdmin(client *backend.Client, log *zap.SugaredLogger, roles ...string) mux.MiddlewareFunc {
	if len(roles) == 0 {
		roles = []string{"admin"}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestIdentity(r)
			if id.Authorization == "" {
				proxy.Error(w, http.StatusUnauthorized, MissingTokenMessage)
				return
			}

			deny := func(status int, message string) {
				audit.Log(audit.AccessEvent{
					User:     id.Subject(),
					Role:     id.Role,
					ClientIP: clientIP(id, r),
					Method:   r.Method,
					Path:     r.URL.Path,
					Status:   status,
					Reason:   message,
				})
				proxy.Error(w, status, message)
			}

			caller, resp, err := client.WhoAmI(r.Context(), id.Authorization)
			switch {
			case err != nil && resp == nil:
				log.Errorw("admin check failed", "path", r.URL.Path, "error", err)
				proxy.Error(w, http.StatusInternalServerError, proxy.InternalErrorMessage)
				return
			case resp != nil && !resp.OK():
				deny(proxy.ErrorStatus(resp.Status), resp.Message(InvalidTokenMessage))
				return
			case err != nil:
				log.Warnw("admin check returned no user", "path", r.URL.Path, "error", err)
				deny(http.StatusUnauthorized, InvalidTokenMessage)
				return
			}

			id.UserID = caller.ID
			id.Email = caller.Email
			id.Role = caller.Role
			id.Permissions = caller.Permissions

			if !id.HasRole(roles...) {
				deny(http.StatusForbidden, AdminRequiredMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
		})
	}
}

func clientIP(id *identity.Identity, r *http.Request) string {
	if id.RemoteIP != nil {
		return id.RemoteIP.String()
	}
	return r.RemoteAddr
}
