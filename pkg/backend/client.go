package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WhoAmIPath is the backend endpoint that describes the bearer of a token.
const WhoAmIPath = "/api/auth/me"

// Request is a single call to the backend.
type Request struct {
	Method string
	// Path is appended to the base URL and must start with a slash.
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is the fully read backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports whether the backend answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Message extracts a human readable error from a JSON body, looking at
// "message" first and then "error". fallback is returned when neither is a
// non-empty string.
func (r *Response) Message(fallback string) string {
	var body struct {
		Message interface{} `json:"message"`
		Error   interface{} `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return fallback
	}
	if s, ok := body.Message.(string); ok && s != "" {
		return s
	}
	switch e := body.Error.(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]interface{}:
		if s, ok := e["message"].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Client calls the backend service. The base URL is looked up on every call so
// configuration reloads take effect without rebuilding the client.
type Client struct {
	baseURL func() string
	http    *http.Client
}

// NewClient returns a client for the backend at baseURL(). A zero timeout
// leaves outbound calls bounded only by the request context.
func NewClient(baseURL func() string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// URL joins the base URL, path and encoded query.
func (c *Client) URL(path string, query url.Values) string {
	u := strings.TrimRight(c.baseURL(), "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do performs exactly one outbound call and reads the whole response body.
// Non-2xx statuses are not errors; only transport failures are.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

// Caller is the user the backend associates with a bearer token.
type Caller struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type callerJSON struct {
	ID          string   `json:"id"`
	MongoID     string   `json:"_id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (c *callerJSON) caller() *Caller {
	if c == nil || (c.ID == "" && c.MongoID == "" && c.Email == "") {
		return nil
	}
	id := c.ID
	if id == "" {
		id = c.MongoID
	}
	return &Caller{
		ID:          id,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}

// WhoAmI asks the backend who owns authorization. When the backend answers
// with a non-2xx status the caller is nil and the response is returned so the
// status can be mirrored.
func (c *Client) WhoAmI(ctx context.Context, authorization string) (*Caller, *Response, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   WhoAmIPath,
		Header: http.Header{"Authorization": []string{authorization}},
	})
	if err != nil {
		return nil, nil, err
	}
	if !resp.OK() {
		return nil, resp, nil
	}

	var body struct {
		Data json.RawMessage `json:"data"`
		User *callerJSON     `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, resp, fmt.Errorf("decode whoami response: %w", err)
	}

	if len(body.Data) > 0 {
		var data struct {
			User *callerJSON `json:"user"`
		}
		if err := json.Unmarshal(body.Data, &data); err == nil {
			if caller := data.User.caller(); caller != nil {
				return caller, resp, nil
			}
		}
		var direct callerJSON
		if err := json.Unmarshal(body.Data, &direct); err == nil {
			if caller := direct.caller(); caller != nil {
				return caller, resp, nil
			}
		}
	}
	if caller := body.User.caller(); caller != nil {
		return caller, resp, nil
	}

	return nil, resp, fmt.Errorf("whoami response has no user")
}
