package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/server/middleware"
)

func TestRoutesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, rt := range Routes() {
		key := rt.Method + " " + rt.Path
		assert.False(t, seen[key], "duplicate route %s", key)
		seen[key] = true

		assert.NotEmpty(t, rt.Name, key)
		assert.True(t, strings.HasPrefix(rt.Upstream, "/api/"), key)
		assert.False(t, rt.Public && rt.AdminOnly, key)
		if rt.Mutating() {
			assert.True(t, rt.AdminOnly, "mutating route %s must be admin only", key)
		}
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, rt := range Routes() {
		if rt.Public {
			continue
		}
		path := strings.NewReplacer("{id}", "abc123").Replace(rt.Path)
		rec := env.do(rt.Method, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rt.Name)
		out := decode(t, rec)
		assert.False(t, out.Success, rt.Name)
		assert.Equal(t, middleware.MissingTokenMessage, out.Message, rt.Name)
	}

	calls, _ := env.upstream.recorded()
	assert.Empty(t, calls)
}

func TestPublicCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	payload := `{"success":true,"data":["robots","drones"]}`
	env.upstream.respond(http.StatusOK, payload)

	rec := env.do(http.MethodGet, "/api/media/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, payload, rec.Body.String())

	calls, _ := env.upstream.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/media/categories", calls[0].URL.Path)
	assert.Empty(t, calls[0].Header.Get("Authorization"))
}

func TestListForwardsAllowedQuery(t *testing.T) {
	env := newTestEnv(t, nil)
	payload := `{"success":true,"data":{"events":[]}}`
	env.upstream.respond(http.StatusOK, payload)

	rec := env.do(http.MethodGet, "/api/events?page=2&search=robo&secret=x&upcoming=true", nil, bearer("tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.String())

	calls, _ := env.upstream.recorded()
	require.Len(t, calls, 1)
	q := calls[0].URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "robo", q.Get("q"))
	assert.Equal(t, "true", q.Get("upcoming"))
	assert.False(t, q.Has("search"))
	assert.False(t, q.Has("secret"))
	assert.Equal(t, "Bearer tok", calls[0].Header.Get("Authorization"))
}

func TestAnnouncementsRenameActive(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.respond(http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodGet, "/api/announcements?active=true", nil, bearer("tok"))
	require.Equal(t, http.StatusOK, rec.Code)

	calls, _ := env.upstream.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "true", calls[0].URL.Query().Get("isActive"))
}

func TestUpstreamErrorIsMirrored(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.respond(http.StatusNotFound, `{"success":false,"message":"Event not found"}`)

	rec := env.do(http.MethodGet, "/api/events/e1", nil, bearer("tok"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	out := decode(t, rec)
	assert.False(t, out.Success)
	assert.Equal(t, "Event not found", out.Message)

	env.upstream.respond(http.StatusNotFound, `<html>oops</html>`)
	rec = env.do(http.MethodGet, "/api/events/e1", nil, bearer("tok"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Failed to fetch events", decode(t, rec).Message)
}

func TestAdminRouteChecksRole(t *testing.T) {
	env := newTestEnv(t, nil)

	// whoami rejects the token: the status is mirrored.
	rec := env.do(http.MethodDelete, "/api/events/e1", nil, bearer("tok"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", decode(t, rec).Message)

	env.upstream.setWhoAmI("student")
	rec = env.do(http.MethodDelete, "/api/events/e1", nil, bearer("tok"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, middleware.AdminRequiredMessage, decode(t, rec).Message)

	calls, _ := env.upstream.recorded()
	assert.Empty(t, calls)

	env.upstream.setWhoAmI("admin")
	env.upstream.respond(http.StatusOK, `{"success":true,"message":"Event deleted"}`)
	rec = env.do(http.MethodDelete, "/api/events/e1", nil, bearer("tok"))
	assert.Equal(t, http.StatusOK, rec.Code)

	calls, _ = env.upstream.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Equal(t, "/api/events/e1", calls[0].URL.Path)
}

func TestEventStatusTransition(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.setWhoAmI("admin")
	env.upstream.respond(http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodPatch, "/api/events/e1/status",
		map[string]interface{}{"status": "archived"}, bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status value", decode(t, rec).Message)

	rec = env.do(http.MethodPatch, "/api/events/e1/status",
		map[string]interface{}{"status": "published", "title": "dropped"}, bearer("tok"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	calls, bodies := env.upstream.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/api/events/e1", calls[0].URL.Path)
	assert.JSONEq(t, `{"status":"published"}`, bodies[0])
}

func TestProjectRequestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.setWhoAmI("admin")
	env.upstream.respond(http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodPatch, "/api/project-requests/r1/reject", map[string]string{}, bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Rejection reason is required", decode(t, rec).Message)

	rec = env.do(http.MethodPatch, "/api/project-requests/r1/reject",
		map[string]string{"reason": "Out of budget"}, bearer("tok"))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, bodies := env.upstream.recorded()
	require.Len(t, bodies, 1)
	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &sent))
	assert.Equal(t, "Out of budget", sent["reason"])
}

func TestUserStatusRequiresBoolean(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.setWhoAmI("admin")
	env.upstream.respond(http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodPatch, "/api/users/u2/status", map[string]string{"isActive": "yes"}, bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "isActive must be a boolean", decode(t, rec).Message)

	rec = env.do(http.MethodPatch, "/api/users/u2/status", map[string]bool{"isActive": false}, bearer("tok"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMalformedBodyIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.setWhoAmI("admin")

	rec := env.do(http.MethodPost, "/api/events", "{broken", bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).Success)

	calls, _ := env.upstream.recorded()
	assert.Empty(t, calls)
}

func TestFixedPathsWinOverIDTemplates(t *testing.T) {
	env := newTestEnv(t, nil)
	env.upstream.setWhoAmI("admin")
	env.upstream.respond(http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodGet, "/api/newsletters/subscribers?status=active", nil, bearer("tok"))
	require.Equal(t, http.StatusOK, rec.Code)

	calls, _ := env.upstream.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/newsletters/subscribers", calls[0].URL.Path)
	assert.Equal(t, "active", calls[0].URL.Query().Get("status"))
}

func TestInvalidPathVariable(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/api/events/undefined", nil, bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id", decode(t, rec).Message)
}
