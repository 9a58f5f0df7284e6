package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/identity"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/logger"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// captureIdentity is a terminal handler recording the identity it received.
func captureIdentity(got **identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		*got = id
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer   padded  ", "padded", true},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"bearer abc", "", false},
		{"Token token=abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			tok, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, tok)
		})
	}
}

func TestRequireBearer(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"missing header", "", http.StatusUnauthorized, MissingTokenMessage},
		{"wrong scheme", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized, InvalidHeaderMessage},
		{"empty token", "Bearer  ", http.StatusUnauthorized, InvalidHeaderMessage},
		{"valid", "Bearer tok", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *identity.Identity
			h := RequireBearer(captureIdentity(&got))

			req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				env := decode(t, rec)
				assert.False(t, env.Success)
				assert.Equal(t, tt.wantMessage, env.Message)
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.header, got.Authorization)
			assert.Equal(t, "192.0.2.1", got.RemoteIP.String())
		})
	}
}

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(token.Config{AccessSecret: "access", RefreshSecret: "refresh"})
	require.NoError(t, err)
	return issuer
}

func TestRequireAccessToken(t *testing.T) {
	issuer := newIssuer(t)
	access, err := issuer.IssueAccessToken(token.Subject{ID: "admin-001", Email: "admin@newtonbotics.com", Role: "admin"})
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken("admin-001")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"missing", "", http.StatusUnauthorized, MissingTokenMessage},
		{"malformed header", "Token " + access, http.StatusUnauthorized, InvalidHeaderMessage},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, InvalidTokenMessage},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized, InvalidTokenMessage},
		{"access token", "Bearer " + access, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *identity.Identity
			h := RequireAccessToken(issuer)(captureIdentity(&got))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decode(t, rec).Message)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, "admin-001", got.UserID)
			assert.Equal(t, "admin", got.Role)
		})
	}
}

func whoamiBackend(t *testing.T, status int, body string) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.WhoAmIPath, r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(func() string { return srv.URL }, 0)
}

func serveAdmin(t *testing.T, client *backend.Client, header string, got **identity.Identity) *httptest.ResponseRecorder {
	t.Helper()
	h := RequireBearer(RequireAdmin(client, logger.Nop())(captureIdentity(got)))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAdminAdmits(t *testing.T) {
	client := whoamiBackend(t, http.StatusOK,
		`{"success":true,"data":{"user":{"_id":"u9","email":"admin@newtonbotics.com","role":"admin","permissions":["read"]}}}`)

	var got *identity.Identity
	rec := serveAdmin(t, client, "Bearer tok", &got)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u9", got.UserID)
	assert.Equal(t, "admin@newtonbotics.com", got.Email)
	assert.Equal(t, []string{"read"}, got.Permissions)
	assert.Equal(t, "Bearer tok", got.Authorization)
}

func TestRequireAdminRejects(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "non admin role",
			status:      http.StatusOK,
			body:        `{"success":true,"data":{"user":{"id":"u2","email":"student@nst.edu","role":"student"}}}`,
			wantStatus:  http.StatusForbidden,
			wantMessage: AdminRequiredMessage,
		},
		{
			name:        "backend rejects with message",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"message":"Token has expired"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Token has expired",
		},
		{
			name:        "backend rejects without message",
			status:      http.StatusUnauthorized,
			body:        ``,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: InvalidTokenMessage,
		},
		{
			name:        "bodiless backend status",
			status:      http.StatusNotModified,
			body:        ``,
			wantStatus:  http.StatusBadGateway,
			wantMessage: InvalidTokenMessage,
		},
		{
			name:        "backend answers without user",
			status:      http.StatusOK,
			body:        `{"success":true,"data":{}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: InvalidTokenMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			audit.DefaultLogger.SetWriter(&buf)
			t.Cleanup(func() { audit.DefaultLogger.SetWriter(io.Discard) })

			var got *identity.Identity
			rec := serveAdmin(t, whoamiBackend(t, tt.status, tt.body), "Bearer tok", &got)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Nil(t, got)
			assert.Contains(t, buf.String(), " access ")
		})
	}
}

func TestRequireAdminBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := backend.NewClient(func() string { return srv.URL }, 0)

	var got *identity.Identity
	rec := serveAdmin(t, client, "Bearer tok", &got)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Message)
	assert.Nil(t, got)
}

func TestRequireAdminWithoutBearer(t *testing.T) {
	var got *identity.Identity
	h := RequireAdmin(whoamiBackend(t, http.StatusOK, `{}`), logger.Nop())(captureIdentity(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MissingTokenMessage, decode(t, rec).Message)
}

func TestRequireAdminCustomRoles(t *testing.T) {
	client := whoamiBackend(t, http.StatusOK, `{"data":{"user":{"id":"u3","role":"super_admin"}}}`)
	var got *identity.Identity
	h := RequireBearer(RequireAdmin(client, logger.Nop(), "admin", "super_admin")(captureIdentity(&got)))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "super_admin", got.Role)
}
