package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, HealthResponse{Success: true, Status: "ok", Version: "1.2.3"}, health)

	calls, _ := env.upstream.recorded()
	assert.Empty(t, calls)
}

func TestStatusPage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), ServiceName)
	assert.Contains(t, rec.Body.String(), "1.2.3")

	for _, tc := range []struct {
		target string
		header map[string]string
	}{
		{"/?format=json", nil},
		{"/", map[string]string{"Accept": "application/json"}},
	} {
		rec := env.do(http.MethodGet, tc.target, nil, tc.header)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, ServiceName, body["name"])
		assert.Equal(t, true, body["success"])
	}
}

func TestDisplayVersion(t *testing.T) {
	assert.Equal(t, "dev", displayVersion(""))
	assert.Equal(t, "0.1.0", displayVersion("0.1.0"))
}

type checkedDirectory struct {
	*directory.Static
	err error
}

func (d checkedDirectory) Status(context.Context) error {
	return d.err
}

func TestReadiness(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/api/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ready ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "static", ready.Directory)

	env = newTestEnv(t, checkedDirectory{Static: directory.NewStatic()})
	rec = env.do(http.MethodGet, "/api/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready.Directory)

	env = newTestEnv(t, checkedDirectory{Static: directory.NewStatic(), err: assert.AnError})
	rec = env.do(http.MethodGet, "/api/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.False(t, ready.Success)
}
