package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestErrorMessage(t *testing.T, err error) string {
	t.Helper()
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "expected RequestError, got %v", err)
	return reqErr.Message
}

func TestRequireString(t *testing.T) {
	tr := RequireString("reason", "Reason is required")

	out, err := tr(map[string]interface{}{"reason": "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "duplicate", out["reason"])

	for _, body := range []map[string]interface{}{{}, {"reason": "  "}, {"reason": 3}} {
		_, err := tr(body)
		assert.Equal(t, "Reason is required", requestErrorMessage(t, err))
	}
}

func TestRequireBool(t *testing.T) {
	tr := RequireBool("isActive", "isActive must be a boolean")

	_, err := tr(map[string]interface{}{"isActive": false})
	assert.NoError(t, err)

	_, err = tr(map[string]interface{}{"isActive": "false"})
	assert.Equal(t, "isActive must be a boolean", requestErrorMessage(t, err))
}

func TestOneOf(t *testing.T) {
	tr := OneOf("role", []string{"admin", "student"}, "Invalid role")

	_, err := tr(map[string]interface{}{"role": "student"})
	assert.NoError(t, err)

	_, err = tr(map[string]interface{}{"role": "root"})
	assert.Equal(t, "Invalid role", requestErrorMessage(t, err))
}

func TestPickAndRename(t *testing.T) {
	tr := Chain(Rename("active", "isActive"), Pick("isActive", "priority"))

	out, err := tr(map[string]interface{}{"active": true, "priority": "high", "other": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"isActive": true, "priority": "high"}, out)
}

func TestChainStopsAtFirstError(t *testing.T) {
	called := false
	tr := Chain(
		RequireString("status", "Status is required"),
		func(body map[string]interface{}) (map[string]interface{}, error) {
			called = true
			return body, nil
		},
	)

	_, err := tr(map[string]interface{}{})
	assert.Error(t, err)
	assert.False(t, called)
}
