package devserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/feedtrack/router"
)

const indexHTML = `<!doctype html><div id="app"></div>`

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte(indexHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "feedtrack.wasm"), []byte("\x00asm"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bundles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundles", "settings-page.js"), []byte("export {}"), 0o644))

	table, err := router.NewTable([]router.RouteDefinition{
		{Pattern: "/", Component: "home-page"},
		{Pattern: "/settings", Component: "settings-page"},
	}, &router.NotFoundConfig{Component: "not-found-page"})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Root = root
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(*cfg, table, nil)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_HistoryFallback(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "root", target: "/", status: http.StatusOK},
		{name: "known route", target: "/settings", status: http.StatusOK},
		{name: "known route with query", target: "/settings?units=ml", status: http.StatusOK},
		{name: "unknown route", target: "/diapers/archive", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target, "text/html,application/xhtml+xml")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, indexHTML, rec.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServer_ServesFiles(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/feedtrack.wasm", "*/*")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	rec = get(t, s, "/bundles/settings-page.js", "*/*")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, immutableCacheControl, rec.Header().Get("Cache-Control"))
}

func TestServer_MissingAssetIsNotFallback(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/bundles/missing.js", "*/*")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, indexHTML, rec.Body.String())
}

func TestServer_PathTraversal(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/../../etc/passwd", "text/html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, indexHTML, rec.Body.String())
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, func(c *Config) {
		c.CORSOrigins = []string{"http://localhost:5173"}
	})

	req := httptest.NewRequest(http.MethodGet, "/bundles/settings-page.js", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_RejectsBadConfig(t *testing.T) {
	table, err := router.NewTable([]router.RouteDefinition{{Pattern: "/", Component: "home-page"}}, nil)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Root = ""
	_, err = New(*cfg, table, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Immutable = []string{"bundles/[*.js"}
	_, err = New(*cfg, table, nil)
	assert.Error(t, err)
}
