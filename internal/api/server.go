package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"goodwatch/internal/config"
	"goodwatch/internal/logging"
)

// Server is the HTTP front end for a Service.
type Server struct {
	bind    string
	logger  *slog.Logger
	svc     *Service
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

// NewServer builds the router for svc using cfg's server section.
func NewServer(cfg *config.Config, svc *Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:   strings.TrimSpace(cfg.Server.Bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		svc:    svc,
	}
	s.handler = s.routes(cfg)
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)
	r.Use(corsHandler(cfg.Server.CORSOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(cfg.Server.RateLimitRequests, cfg.RateLimitWindow(), s.logger))
		r.Post("/recommendations", s.handleRecommendations)
		r.Post("/replacements", s.handleReplacements)
		r.Post("/views/{viewID}/watched", s.handleViewWatched)
		r.Post("/watched", s.handleWatched)
		r.Get("/sessions/{sessionID}/watched", s.handleSessionWatched)
		r.Post("/feedback", s.handleFeedback)
		r.With(adminAuth(cfg.Server.AdminToken, s.logger)).Get("/feedback", s.handleListFeedback)
	})
	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured bind address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("strategy", s.svc.Strategy()),
	)
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown incomplete", logging.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Health(r.Context())
	if err != nil {
		s.logger.Warn("health check failed", logging.Error(err))
		writeJSON(w, s.logger, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	resp, err := s.svc.Recommend(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleReplacements(w http.ResponseWriter, r *http.Request) {
	var req ReplacementsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	resp, err := s.svc.Replacements(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleViewWatched(w http.ResponseWriter, r *http.Request) {
	var req ViewWatchedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	resp, err := s.svc.MarkViewWatched(r.Context(), chi.URLParam(r, "viewID"), req)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleWatched(w http.ResponseWriter, r *http.Request) {
	var req WatchedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	if err := s.svc.RecordWatched(r.Context(), req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionWatched(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.WatchedHistory(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	resp, err := s.svc.RecordFeedback(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, resp)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	resp, err := s.svc.ListFeedback(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}
