package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/backend"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/identity"
)

const (
	// DefaultFailureMessage is used when neither the route nor the backend
	// provide an error message.
	DefaultFailureMessage = "Request failed"
	// InvalidJSONMessage is returned for request bodies that are not JSON.
	InvalidJSONMessage = "Invalid JSON body"

	maxBodyBytes = 10 << 20
)

var (
	pathVarPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	templateVarExpr = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
)

// Param allow-lists one query parameter. When As is set the parameter is
// renamed upstream. Default is sent when the client omits the parameter.
type Param struct {
	Name    string
	As      string
	Default string
}

func (p Param) upstreamName() string {
	if p.As != "" {
		return p.As
	}
	return p.Name
}

// BodyTransform validates and reshapes a JSON object body before forwarding.
// Returning an error created with Invalid yields a 400 with its message; any
// other error yields a 500.
type BodyTransform func(body map[string]interface{}) (map[string]interface{}, error)

// RequestError is a client error raised while shaping a request.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Invalid returns a RequestError with message.
func Invalid(message string) error {
	return &RequestError{Message: message}
}

// Route describes one gateway endpoint and how it maps onto the backend.
type Route struct {
	// Name identifies the route in logs and audit records, e.g. "events.update".
	Name   string
	Method string
	// Path is the gorilla/mux template the gateway serves.
	Path string
	// Upstream is the backend path template; {var} placeholders are filled
	// from the validated path variables.
	Upstream string
	// UpstreamMethod overrides Method for the backend call.
	UpstreamMethod string
	Query          []Param
	Body           BodyTransform
	// Public routes do not require a bearer token.
	Public bool
	// AdminOnly routes require the backend to confirm an admin role.
	AdminOnly bool
	// FailureMessage is used when the backend error carries no message.
	FailureMessage string
	// PathVars lists the variables to validate. When empty they are taken
	// from the Upstream template.
	PathVars []string
}

// Vars returns the path variables validated for the route.
func (rt Route) Vars() []string {
	if len(rt.PathVars) > 0 {
		return rt.PathVars
	}
	var vars []string
	for _, m := range templateVarExpr.FindAllStringSubmatch(rt.Upstream, -1) {
		vars = append(vars, m[1])
	}
	return vars
}

func (rt Route) upstreamMethod() string {
	if rt.UpstreamMethod != "" {
		return rt.UpstreamMethod
	}
	return rt.Method
}

func (rt Route) failureMessage() string {
	if rt.FailureMessage != "" {
		return rt.FailureMessage
	}
	return DefaultFailureMessage
}

// Mutating reports whether the route changes backend state.
func (rt Route) Mutating() bool {
	switch rt.upstreamMethod() {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// Proxy turns Route descriptors into handlers that forward to the backend.
type Proxy struct {
	client *backend.Client
	log    *zap.SugaredLogger
}

// New returns a Proxy using client for outbound calls.
func New(client *backend.Client, log *zap.SugaredLogger) *Proxy {
	return &Proxy{client: client, log: log}
}

// Handler returns the handler for rt. Authentication is not checked here;
// callers wrap the handler with the middleware the route requires.
func (p *Proxy) Handler(rt Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, err := upstreamPath(rt, mux.Vars(r))
		if err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}

		body, err := requestBody(rt, r)
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				Error(w, http.StatusBadRequest, reqErr.Message)
				return
			}
			p.log.Errorw("failed to prepare request body", "route", rt.Name, "error", err)
			Error(w, http.StatusInternalServerError, InternalErrorMessage)
			return
		}

		header := http.Header{}
		authorization := r.Header.Get("Authorization")
		id, hasID := identity.Get(r.Context())
		if hasID && id.Authorization != "" {
			authorization = id.Authorization
		}
		if authorization != "" {
			header.Set("Authorization", authorization)
		}
		if body != nil {
			header.Set("Content-Type", "application/json")
		}

		resp, err := p.client.Do(r.Context(), backend.Request{
			Method: rt.upstreamMethod(),
			Path:   path,
			Query:  upstreamQuery(rt, r.URL.Query()),
			Header: header,
			Body:   body,
		})
		if err != nil {
			p.log.Errorw("backend request failed", "route", rt.Name, "path", path, "error", err)
			p.audit(rt, r, path, http.StatusInternalServerError, false)
			Error(w, http.StatusInternalServerError, InternalErrorMessage)
			return
		}
		p.audit(rt, r, path, resp.Status, resp.OK())

		if !resp.OK() {
			p.log.Debugw("backend rejected request", "route", rt.Name, "status", resp.Status)
			Error(w, ErrorStatus(resp.Status), resp.Message(rt.failureMessage()))
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)
	})
}

func (p *Proxy) audit(rt Route, r *http.Request, path string, status int, success bool) {
	if !rt.Mutating() {
		return
	}
	event := audit.ProxyEvent{
		Route:    rt.Name,
		Method:   rt.upstreamMethod(),
		Path:     path,
		Status:   status,
		Success:  success,
		ClientIP: r.RemoteAddr,
	}
	if id, ok := identity.Get(r.Context()); ok {
		event.User = id.Subject()
		if id.RemoteIP != nil {
			event.ClientIP = id.RemoteIP.String()
		}
	}
	audit.Log(event)
}

// ErrorStatus returns the status used to relay a failed backend answer. Statuses
// that cannot carry the error envelope (1xx, 204, 304) become 502.
func ErrorStatus(status int) int {
	if status < 200 || status == http.StatusNoContent || status == http.StatusNotModified {
		return http.StatusBadGateway
	}
	return status
}

// ValidPathVar reports whether v may be substituted into a backend path.
func ValidPathVar(v string) bool {
	if v == "" || v == "undefined" || v == "null" {
		return false
	}
	return pathVarPattern.MatchString(v)
}

func upstreamPath(rt Route, vars map[string]string) (string, error) {
	path := rt.Upstream
	for _, name := range rt.Vars() {
		v := vars[name]
		if !ValidPathVar(v) {
			return "", Invalid("Invalid " + name)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(v))
	}
	return path, nil
}

func upstreamQuery(rt Route, in url.Values) url.Values {
	out := url.Values{}
	for _, p := range rt.Query {
		var values []string
		for _, v := range in[p.Name] {
			if v != "" {
				values = append(values, v)
			}
		}
		switch {
		case len(values) > 0:
			out[p.upstreamName()] = values
		case p.Default != "":
			out.Set(p.upstreamName(), p.Default)
		}
	}
	return out
}

// requestBody returns the bytes to forward, or nil for methods without a body.
func requestBody(rt Route, r *http.Request) ([]byte, error) {
	if !hasBody(rt.upstreamMethod()) && !hasBody(r.Method) {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, Invalid(InvalidJSONMessage)
	}
	raw = bytes.TrimSpace(raw)

	if rt.Body == nil {
		if len(raw) == 0 {
			return []byte{}, nil
		}
		if !json.Valid(raw) {
			return nil, Invalid(InvalidJSONMessage)
		}
		return raw, nil
	}

	obj := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, Invalid(InvalidJSONMessage)
		}
	}
	obj, err = rt.Body(obj)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return out, nil
}
