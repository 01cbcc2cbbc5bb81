// Package api serves window searches, contact scheduling and status lookups
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/config"
	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/core/model"
)

// Scheduler is the service behind the API.
type Scheduler interface {
	FindWindow(ctx context.Context, req model.SearchRequest) (model.CandidateWindow, error)
	Schedule(ctx context.Context, req app.ScheduleRequest) (app.ScheduleResult, error)
	Contacts(ctx context.Context, stationID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error)
}

// StatusGetter looks up a committed contact.
type StatusGetter interface {
	GetStatus(ctx context.Context, id string) (model.BookingInfo, bool)
}

// Server represents the HTTP API server.
type Server struct {
	cfg       config.ServerConfig
	scheduler Scheduler
	status    StatusGetter
	metrics   http.Handler
	log       logger.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a server. metrics may be nil, in which case /metrics is not
// routed.
func New(cfg config.ServerConfig, scheduler Scheduler, status StatusGetter, metrics http.Handler, log logger.Logger) *Server {
	return &Server{
		cfg:       cfg,
		scheduler: scheduler,
		status:    status,
		metrics:   metrics,
		log:       logger.OrNop(log),
		startedAt: time.Now(),
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Infof("API server listening on %s", s.cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Infof("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/windows", s.handleFindWindow)
		r.Post("/contacts", s.handleSchedule)
		r.Get("/contacts/{id}", s.handleGetContact)
		r.Get("/stations/{id}/contacts", s.handleStationContacts)
	})
	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debugw("http request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}
