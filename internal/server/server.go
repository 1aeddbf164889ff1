// Package server is the development server: it renders pages per request
// from the in-memory site model, watches the content directory and
// rebuilds the model on change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/site"
)

const platformCookie = "docsite_platform"

// Server hosts the documentation site for local development.
type Server struct {
	cfg      *config.Config
	engine   *render.Engine
	recorder metrics.Recorder
	registry *prom.Registry
	reload   *ReloadHub

	mu      sync.RWMutex
	model   *site.Model
	lastErr error
}

// New constructs the server and performs the initial model load. A failing
// initial load is not fatal: the server starts and surfaces the error on
// /healthz until a rebuild succeeds.
func New(cfg *config.Config) (*Server, error) {
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	engine, err := render.NewEngine(cfg, recorder)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		recorder: recorder,
		registry: registry,
		reload:   NewReloadHub(),
	}
	if err := s.Rebuild(); err != nil {
		slog.Error("initial site load failed", "error", err)
	}
	return s, nil
}

// Rebuild reloads the site model from disk. On failure the previous model
// keeps serving and the error is retained for /healthz.
func (s *Server) Rebuild() error {
	model, err := site.Load(s.cfg)

	s.mu.Lock()
	if err == nil {
		s.model = model
	}
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if s.cfg.Serve.LiveReload {
		s.reload.Notify()
	}
	return nil
}

func (s *Server) snapshot() (*site.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.lastErr
}

// Handler builds the full route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.Handle("/livereload", s.reload)
	mux.Handle("/assets/", http.FileServer(http.FS(render.Assets())))
	mux.HandleFunc("/", s.handlePage)
	return mux
}

// Run starts the HTTP server and the content watcher, blocking until the
// context is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Pre-bind so port conflicts fail fast instead of surfacing mid-startup.
	addr := fmt.Sprintf(":%d", s.cfg.Serve.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if err := s.watch(watchCtx); err != nil {
		_ = ln.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	slog.Info("dev server listening", "url", fmt.Sprintf("http://localhost:%d", s.cfg.Serve.Port))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	model, lastErr := s.snapshot()

	status := "ok"
	var detail string
	switch {
	case model == nil:
		status = "failing"
		detail = "no successful build yet"
	case lastErr != nil:
		status = "degraded"
	}
	if lastErr != nil {
		detail = lastErr.Error()
	}

	routes := 0
	if model != nil {
		routes = model.Tree.Len()
	}
	w.Header().Set("Content-Type", "application/json")
	if status == "failing" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"routes":     routes,
		"last_error": detail,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	model, _ := s.snapshot()
	if model == nil {
		http.Error(w, "site failed to build; check the logs", http.StatusServiceUnavailable)
		s.recorder.IncHTTPRequest(http.StatusServiceUnavailable)
		return
	}

	platform := s.selectPlatform(w, r)

	if entry, ok := model.Tree.Lookup(r.URL.Path); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.engine.RenderPage(w, model, entry, platform); err != nil {
			slog.Error("render failed", "path", r.URL.Path, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			s.recorder.IncHTTPRequest(http.StatusInternalServerError)
			return
		}
		s.recorder.IncHTTPRequest(http.StatusOK)
		return
	}

	if s.serveFile(w, r) {
		s.recorder.IncHTTPRequest(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := s.engine.RenderNotFound(w, model, platform); err != nil {
		slog.Error("render 404 failed", "error", err)
	}
	s.recorder.IncHTTPRequest(http.StatusNotFound)
}

// selectPlatform picks the active platform from the query string or the
// platform cookie, persisting explicit selections. Unknown tags fall back
// silently to the default.
func (s *Server) selectPlatform(w http.ResponseWriter, r *http.Request) string {
	if tag := r.URL.Query().Get("platform"); tag != "" {
		tag = s.engine.ActivePlatform(tag)
		http.SetCookie(w, &http.Cookie{Name: platformCookie, Value: tag, Path: "/"})
		return tag
	}
	if c, err := r.Cookie(platformCookie); err == nil {
		return s.engine.ActivePlatform(c.Value)
	}
	return s.cfg.Platforms.Default
}

// serveFile serves content assets and files from the static dir.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) bool {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return false
	}
	roots := []string{s.cfg.Content.Dir}
	if s.cfg.Content.StaticDir != "" {
		roots = append(roots, s.cfg.Content.StaticDir)
	}
	for _, root := range roots {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if st, err := os.Stat(path); err == nil && !st.IsDir() && !strings.HasSuffix(path, ".md") {
			http.ServeFile(w, r, path)
			return true
		}
	}
	return false
}
