package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/config"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

// isolateConfig points the loader at an empty directory.
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADMIN_CONFIG_PATH", dir)
	t.Setenv("ADMIN_ENV_FILE", filepath.Join(dir, ".env"))
	for _, name := range []string{
		"JWT_SECRET", "JWT_REFRESH_SECRET", "ADMIN_DIRECTORY", "DATABASE_URL",
		"AUDIT_DATABASE_URL", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "ADMIN_EMAIL",
	} {
		t.Setenv(name, "")
	}
}

func testIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(token.Config{AccessSecret: "cli-access", RefreshSecret: "cli-refresh"})
	require.NoError(t, err)
	return issuer
}

func TestIssueAndVerifyTokens(t *testing.T) {
	issuer := testIssuer(t)

	var out bytes.Buffer
	require.NoError(t, issueTokens(&out, issuer, token.Subject{ID: "admin-001", Role: "admin"}))

	var issued struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &issued))
	assert.Equal(t, 86400, issued.ExpiresIn)

	out.Reset()
	require.NoError(t, verifyToken(&out, issuer, "Bearer "+issued.AccessToken, false))
	assert.Contains(t, out.String(), `"role": "admin"`)

	out.Reset()
	require.NoError(t, verifyToken(&out, issuer, issued.RefreshToken, true))
	assert.Contains(t, out.String(), `"type": "refresh"`)

	assert.Error(t, verifyToken(&out, issuer, issued.RefreshToken, false))
	assert.Error(t, issueTokens(&out, issuer, token.Subject{}))
}

func TestHashFromReader(t *testing.T) {
	hash, err := hashFromReader(strings.NewReader("s3cret\n"))
	require.NoError(t, err)
	assert.True(t, directory.CheckPassword(&directory.User{PasswordHash: hash}, "s3cret"))

	_, err = hashFromReader(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	for _, bad := range []string{"0", "-1", "two"} {
		_, err := parseSteps([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestBuildStaticDirectory(t *testing.T) {
	isolateConfig(t)
	t.Setenv("ADMIN_PASSWORD", "from-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	dir, err := buildDirectory(cfg)
	require.NoError(t, err)

	u, err := dir.FindByEmail(context.Background(), config.DefaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.True(t, directory.CheckPassword(u, "from-env"))
}

func TestConfigureAuditWithoutDatabase(t *testing.T) {
	isolateConfig(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	store, err := configureAudit(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.Equal(t, cfg.AuditEnabled, audit.IsEnabled())
}

func TestShowConfiguration(t *testing.T) {
	isolateConfig(t)
	t.Setenv("JWT_SECRET", "very-secret-value")

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, "text"))
	assert.NotContains(t, out.String(), "very-secret-value")

	out.Reset()
	require.NoError(t, showConfiguration(&out, "json"))
	assert.True(t, json.Valid(out.Bytes()))

	assert.Error(t, showConfiguration(&out, "xml"))
}

func TestPrintAudit(t *testing.T) {
	messages := []audit.Message{{
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Msgid:     "login",
		Message:   "admin@newtonbotics.com logged in",
		Sdata: map[string]any{
			"auth@32473": map[string]any{"result": "success", "email": "admin@newtonbotics.com"},
		},
	}}

	var out bytes.Buffer
	require.NoError(t, printAudit(&out, messages, "text"))
	assert.Equal(t,
		"2025-03-01T10:00:00Z login    admin@newtonbotics.com logged in [auth@32473 email=admin@newtonbotics.com result=success]\n",
		out.String())

	out.Reset()
	require.NoError(t, printAudit(&out, messages, "json"))
	assert.Contains(t, out.String(), `"msgid": "login"`)
}

func TestWaitForServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, waitForServer(srv.URL, 3, time.Millisecond))

	srv.Close()
	assert.Error(t, waitForServer(srv.URL, 2, time.Millisecond))
}
