package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds the full application against the static
// provider with a small fixture chain.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	dir := t.TempDir()
	fixture := []map[string]any{
		{
			"strike":        100,
			"option_type":   "call",
			"expiration":    "2026-09-18",
			"bid":           1.2,
			"ask":           1.3,
			"open_interest": 50,
		},
		{
			"strike":        100,
			"option_type":   "put",
			"expiration":    "2026-09-18",
			"open_interest": 30,
		},
	}
	data, err := json.Marshal(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.json"), data, 0644))

	t.Setenv("CHAINPULSE_CONFIG", "")
	t.Setenv("CHAINPULSE_PROVIDER_NAME", "static")
	t.Setenv("CHAINPULSE_PROVIDER_FIXTURES_DIR", dir)
	t.Setenv("CHAINPULSE_SECURITY_RATE_LIMIT_ENABLED", "false")

	app, err := NewApplication()
	require.NoError(t, err)
	t.Cleanup(app.Hub.Stop)
	app.Hub.Start()
	return app
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "static", body["provider"])
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("chain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chain/AAPL", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, 2, body.Count)
	})

	t.Run("unknown ticker", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chain/MSFT", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request id issued", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}
