package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveReportsOK(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(nil, "openai/gpt-4o-mini", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Live(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, Version, resp.Version)
}

func TestReadyWithoutDatabase(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(nil, "fallback", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not configured", resp.Database)
	assert.Equal(t, "fallback", resp.Provider)
	// Graphviz availability depends on the host, but the field is always set.
	assert.NotEmpty(t, resp.Graphviz)
}
