// Package httpapi provides the read-only introspection server for the
// simulation runtime (bus list, job board snapshot, plugin status) plus the
// small set of JSON response helpers it needs, trimmed down from the
// teacher's infrastructure/httputil package (which also handled HTTP
// authentication/mTLS concerns that have no analogue in a single-process
// simulation core).
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/ashfall-games/simcore/internal/eventbus"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/job/eventlog"
	"github.com/ashfall-games/simcore/internal/plugin"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config is the set of engine surfaces the server introspects. Any field
// left nil disables the endpoints that depend on it, responding 500
// instead of panicking.
type Config struct {
	Buses   *eventbus.Registry
	Board   *job.Board
	Plugins *plugin.Host
	Events  *eventlog.Log
}

// Server is the read-only introspection server: bus list, job board
// snapshot, plugin load status, and Prometheus metrics. It never mutates
// simulation state. Grounded on the teacher's chi-based daemon server
// (internal/daemon/server.go): a chi.Mux built once in setupRoutes, a
// wrapped *http.Server for graceful Start/Shutdown.
type Server struct {
	mu     sync.RWMutex
	cfg    Config
	router *chi.Mux
	server *http.Server
}

// NewServer builds a Server over cfg.
func NewServer(cfg Config) *Server {
	s := &Server{cfg: cfg, router: chi.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/buses", s.handleBuses)
	s.router.Get("/jobs", s.handleJobs)
	s.router.Get("/plugins", s.handlePlugins)
	s.router.Get("/plugins/health", s.handlePluginsHealth)
	s.router.Get("/events", s.handleEvents)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Handler returns the server's http.Handler, for tests and for embedding
// in another process's mux.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleBuses(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Buses == nil {
		InternalError(w, "event bus registry not available")
		return
	}
	WriteJSON(w, http.StatusOK, s.cfg.Buses.ListBuses())
}

// jobsSnapshot is the /jobs response shape: the board's open jobs (assigned
// or not) ordered by priority, plus the total count of jobs the board
// tracks (including terminal jobs the next Board.Update has not yet dropped).
type jobsSnapshot struct {
	OpenJobs []*job.Job `json:"open_jobs"`
	Total    int        `json:"total"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Board == nil {
		InternalError(w, "job board not available")
		return
	}
	WriteJSON(w, http.StatusOK, jobsSnapshot{
		OpenJobs: s.cfg.Board.OpenJobsByPriority(),
		Total:    s.cfg.Board.Len(),
	})
}

type pluginsSnapshot struct {
	Loaded   []plugin.LoadRecord  `json:"loaded"`
	Failures []plugin.LoadFailure `json:"failures"`
}

func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Plugins == nil {
		InternalError(w, "plugin host not available")
		return
	}
	WriteJSON(w, http.StatusOK, pluginsSnapshot{
		Loaded:   s.cfg.Plugins.Loaded(),
		Failures: s.cfg.Plugins.Failures(),
	})
}

func (s *Server) handlePluginsHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Plugins == nil {
		InternalError(w, "plugin host not available")
		return
	}
	snap, err := s.cfg.Plugins.Health(r.Context())
	if err != nil {
		InternalError(w, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Events == nil {
		InternalError(w, "event log not available")
		return
	}
	WriteJSON(w, http.StatusOK, s.cfg.Events.Records())
}

// Start starts the HTTP server on addr and blocks until it's stopped.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	server := s.server
	s.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	return nil
}
