package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/couchcryptid/fg-probability-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBytes = 64 << 10

// Scorer evaluates field-goal attempts. *domain.Model implements it.
type Scorer interface {
	Evaluate(base domain.Attempt, overrides ...domain.Attempt) (domain.Evaluation, error)
	Team(code string) (domain.Team, error)
	Teams() []domain.Team
}

// Server exposes scoring, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	scorer     Scorer
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 scoring routes.
func NewServer(addr string, scorer Scorer, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		scorer:  scorer,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/probability", s.handleProbability)
	mux.HandleFunc("GET /v1/teams", s.handleTeams)
	mux.HandleFunc("GET /v1/teams/{code}", s.handleTeam)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleProbability(w http.ResponseWriter, r *http.Request) {
	var req domain.AttemptRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err))
		return
	}

	var overrides []domain.Attempt
	if req.Overrides != nil {
		overrides = append(overrides, *req.Overrides)
	}
	ev, err := s.scorer.Evaluate(req.Attempt, overrides...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.metrics.HTTPScoreRequests.WithLabelValues("ok").Inc()
	s.metrics.Probability.Observe(ev.Probability)
	s.logger.Debug("attempt scored",
		"id", req.ID,
		"probability", ev.Probability,
		"linear_predictor", ev.LinearPredictor,
	)
	sharedobs.WriteJSON(w, http.StatusOK, ev)
}

func (s *Server) handleTeams(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.scorer.Teams())
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.scorer.Team(r.PathValue("code"))
	if err != nil {
		sharedobs.WriteJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, team)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := domain.ErrorKind(err)
	s.metrics.HTTPScoreRequests.WithLabelValues(kind).Inc()
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("scoring failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrLookup):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMalformedRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
