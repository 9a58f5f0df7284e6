package integration

import (
	"io"
	"net/http"
	"sync"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
)

// BackendCall is one request the fake backend received.
type BackendCall struct {
	Method   string
	Path     string
	RawQuery string
	Auth     string
	Body     string
}

// FakeBackend stands in for the upstream API. Responses are keyed by path;
// unknown paths answer 404.
type FakeBackend struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	role      string
	calls     []BackendCall
}

type fakeResponse struct {
	status int
	body   string
}

// NewFakeBackend returns a backend with no routes and no caller role.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{responses: map[string]fakeResponse{}}
}

// Reset forgets routes, calls and the caller role.
func (f *FakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = map[string]fakeResponse{}
	f.calls = nil
	f.role = ""
}

// Respond makes path answer with status and body.
func (f *FakeBackend) Respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status: status, body: body}
}

// SetCallerRole sets the role reported by the whoami endpoint. An empty role
// makes whoami reject the token.
func (f *FakeBackend) SetCallerRole(role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.role = role
}

// Calls returns the non-whoami requests received so far.
func (f *FakeBackend) Calls() []BackendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BackendCall(nil), f.calls...)
}

func (f *FakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == backend.WhoAmIPath {
		if f.role == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"_id":"u1","email":"member@newtonbotics.com","role":"` + f.role + `"}}}`))
		return
	}

	f.calls = append(f.calls, BackendCall{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Auth:     r.Header.Get("Authorization"),
		Body:     string(body),
	})

	resp, ok := f.responses[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Route not found"}`))
		return
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
