package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ent0n29/videotask/internal/config"
	"github.com/ent0n29/videotask/internal/observability"
	"github.com/ent0n29/videotask/internal/provisioning"
)

type Provisioner interface {
	Provision(ctx context.Context, req provisioning.Request) (provisioning.Result, error)
}

type Server struct {
	cfg          config.Config
	provisioner  Provisioner
	metrics      *observability.Metrics
	platformMode string

	mu        sync.RWMutex
	preflight preflightState
}

type preflightState struct {
	done      bool
	workspace string
	err       string
}

func New(cfg config.Config, provisioner Provisioner, metrics *observability.Metrics, platformMode string) *Server {
	return &Server{
		cfg:          cfg,
		provisioner:  provisioner,
		metrics:      metrics,
		platformMode: platformMode,
	}
}

// SetPreflight records the outcome of the startup workspace lookup.
func (s *Server) SetPreflight(workspace string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preflight = preflightState{done: true, workspace: workspace}
	if err != nil {
		s.preflight.err = err.Error()
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/create-video-task", s.handleCreateVideoTask)

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSAllowedOrigins
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"platform_mode": s.platformMode,
	})
}

// handleReady always answers 200: the service keeps serving when the
// platform is unreachable, it only reports itself degraded.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	pf := s.preflight
	s.mu.RUnlock()

	status := "ready"
	if !pf.done || pf.err != "" {
		status = "degraded"
	}
	body := map[string]any{
		"status":        status,
		"platform_mode": s.platformMode,
		"workspace":     pf.workspace,
	}
	if !pf.done {
		body["preflight_error"] = "preflight pending"
	} else if pf.err != "" {
		body["preflight_error"] = pf.err
	}
	respondJSON(w, http.StatusOK, body)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		// Only a body with no bytes at all is empty; truncated JSON is malformed.
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
