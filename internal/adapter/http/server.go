package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentra-ops/incident-triage/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// FeedProvider assembles a prioritized snapshot of recent incidents.
type FeedProvider interface {
	Feed(opts domain.FeedOptions) []domain.TriagedIncident
}

// Server exposes health, readiness, metrics, and feed HTTP endpoints.
type Server struct {
	httpServer  *http.Server
	logger      *slog.Logger
	feed        FeedProvider
	defaultOpts domain.FeedOptions
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /feed routes. defaultOpts supplies the responder-center radius filter
// applied to every feed request; window and type come from query params.
func NewServer(addr string, ready ReadinessChecker, feed FeedProvider, defaultOpts domain.FeedOptions, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:      logger,
		feed:        feed,
		defaultOpts: defaultOpts,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /feed", s.handleFeed)
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// feedResponse is the /feed payload: severity tallies for the header
// counters plus the prioritized incident list.
type feedResponse struct {
	Counts    domain.SeverityCounts    `json:"counts"`
	Incidents []domain.TriagedIncident `json:"incidents"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	opts, err := s.feedOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	incidents := s.feed.Feed(opts)
	writeJSON(w, http.StatusOK, feedResponse{
		Counts:    domain.CountBySeverity(incidents),
		Incidents: incidents,
	})
}

// feedOptions merges the server defaults with the request's window and
// type query parameters, e.g. /feed?window=15m&type=Fire.
func (s *Server) feedOptions(r *http.Request) (domain.FeedOptions, error) {
	opts := s.defaultOpts

	if w := r.URL.Query().Get("window"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil || d < 0 {
			return domain.FeedOptions{}, &badParamError{param: "window", value: w}
		}
		opts.Window = d
	}

	if t := r.URL.Query().Get("type"); t != "" {
		opts.Type = domain.ParseIncidentType(t)
	}

	return opts, nil
}

type badParamError struct {
	param string
	value string
}

func (e *badParamError) Error() string {
	return "invalid " + e.param + ": " + e.value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
