package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/logger"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

const testPassword = "admin123"

// upstream is a fake backend recording every call it receives.
type upstream struct {
	mu     sync.Mutex
	calls  []*http.Request
	bodies []string
	status int
	body   string
	whoami string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == backend.WhoAmIPath {
		u.mu.Lock()
		whoami := u.whoami
		u.mu.Unlock()
		if whoami == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
			return
		}
		_, _ = w.Write([]byte(whoami))
		return
	}

	u.mu.Lock()
	u.calls = append(u.calls, r.Clone(r.Context()))
	u.bodies = append(u.bodies, string(body))
	status, payload := u.status, u.body
	u.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func (u *upstream) setWhoAmI(role string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.whoami = `{"success":true,"data":{"user":{"_id":"u1","email":"someone@newtonbotics.com","role":"` + role + `"}}}`
}

func (u *upstream) respond(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status, u.body = status, body
}

func (u *upstream) recorded() ([]*http.Request, []string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*http.Request(nil), u.calls...), append([]string(nil), u.bodies...)
}

type testEnv struct {
	server   *server.Server
	handler  http.Handler
	upstream *upstream
	issuer   *token.Issuer
}

func newTestEnv(t testing.TB, dir directory.Directory) *testEnv {
	t.Helper()
	audit.DefaultLogger.SetWriter(io.Discard)

	if dir == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		require.NoError(t, err)
		dir = directory.NewStatic(directory.DefaultAdmin("", string(hash)))
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "endpoint-access-secret",
		RefreshSecret: "endpoint-refresh-secret",
		Issuer:        "newtonbotics-admin",
	})
	require.NoError(t, err)

	up := &upstream{}
	backendSrv := httptest.NewServer(up)
	t.Cleanup(backendSrv.Close)

	srv := server.NewServer(server.Options{
		Addr:      "127.0.0.1:0",
		Version:   "1.2.3",
		Issuer:    issuer,
		Directory: dir,
		Backend:   backend.NewClient(func() string { return backendSrv.URL }, 0),
		Log:       logger.Nop(),
		AccessLog: io.Discard,
	})
	RegisterAll(srv)

	return &testEnv{server: srv, handler: srv.Handler(), upstream: up, issuer: issuer}
}

func (e *testEnv) do(method, target string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t testing.TB, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}
