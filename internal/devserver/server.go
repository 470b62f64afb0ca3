// Package devserver hosts a built feedtrack SPA for local development.
//
// Files under the root directory are served as-is. Any other GET that
// accepts HTML receives the index document so deep links and reloads reach
// the client-side router; the status is 200 when the route manifest knows
// the path and 404 otherwise, while the page itself renders the not-found
// route.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vcrobe/feedtrack/router"
)

func init() {
	// Older mime tables lack it and instantiateStreaming refuses anything else.
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

const immutableCacheControl = "public, max-age=31536000, immutable"

// Server serves the SPA build.
type Server struct {
	cfg        Config
	table      *router.Table
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for cfg. table decides the fallback status code.
func New(cfg Config, table *router.Table, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	for _, pattern := range cfg.Immutable {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid immutable pattern %q", pattern)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, table: table, logger: logger}
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/*", s.serveApp)
	r.Head("/*", s.serveApp)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// serveApp serves a file from the root, or the index document.
func (s *Server) serveApp(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel != "" {
		full := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			if s.immutable(rel) {
				w.Header().Set("Cache-Control", immutableCacheControl)
			}
			http.ServeFile(w, r, full)
			return
		}
	}

	if !acceptsHTML(r) {
		http.NotFound(w, r)
		return
	}

	status := http.StatusOK
	res, err := s.table.Resolve(router.Pathname(r.URL))
	if err != nil || res.NotFound {
		status = http.StatusNotFound
	}
	s.serveIndex(w, status)
}

func (s *Server) serveIndex(w http.ResponseWriter, status int) {
	data, err := os.ReadFile(filepath.Join(s.cfg.Root, s.cfg.Index))
	if err != nil {
		s.logger.Error("reading index document", "error", err)
		http.Error(w, "index document unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) immutable(rel string) bool {
	for _, pattern := range s.cfg.Immutable {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// acceptsHTML reports whether the request is a document navigation rather
// than an asset or API fetch.
func acceptsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return path.Ext(r.URL.Path) == ""
	}
	return strings.Contains(accept, "text/html") || (strings.Contains(accept, "*/*") && path.Ext(r.URL.Path) == "")
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", s.cfg.Addr, "root", s.cfg.Root)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
