package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/groundsched/config"
	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/conflict"
	coremetrics "github.com/kilianp07/groundsched/core/metrics"
	"github.com/kilianp07/groundsched/core/model"
	coremon "github.com/kilianp07/groundsched/core/monitoring"
	"github.com/kilianp07/groundsched/core/reservation"
	"github.com/kilianp07/groundsched/core/search"
	"github.com/kilianp07/groundsched/infra/logger"
	"github.com/kilianp07/groundsched/infra/monitoring"

	_ "github.com/kilianp07/groundsched/app/plugins"
)

const (
	emitterBuffer = 256
	flushTimeout  = 5 * time.Second
)

// Deps overrides the collaborators New would build from configuration.
// Nil fields are built as usual.
type Deps struct {
	Authority authority.Authority
	Sink      coremetrics.MetricsSink
	Log       logger.Logger
	Monitor   coremon.Monitor
}

// Service wires the search engine, the committer and the status reader to
// one authority.
type Service struct {
	Authority authority.Authority
	Engine    *search.Engine
	Committer *reservation.Committer
	Status    *reservation.StatusReader

	cfg       *config.Config
	emitter   *coremetrics.Emitter
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	log       logger.Logger
	logCloser io.Closer
}

// ScheduleRequest is a search followed by a commit. MissionProfile falls
// back to the configured default.
type ScheduleRequest struct {
	Search         model.SearchRequest
	MissionProfile string
	DryRun         bool
}

// ScheduleResult reports the chosen window and, unless DryRun, the contact id.
type ScheduleResult struct {
	Candidate model.CandidateWindow `json:"candidate" yaml:"candidate"`
	ContactID string                `json:"contact_id,omitempty" yaml:"contact_id,omitempty"`
	DryRun    bool                  `json:"dry_run" yaml:"dry_run"`
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	return NewWithDeps(cfg, Deps{})
}

// NewWithDeps creates a Service, using d where set.
func NewWithDeps(cfg *config.Config, d Deps) (*Service, error) {
	s := &Service{cfg: cfg, log: d.Log, monitor: d.Monitor, Authority: d.Authority, sink: d.Sink}
	if s.log == nil {
		logg, closer, err := logger.NewFromConfig(cfg.Logging, "service")
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		s.log, s.logCloser = logg, closer
	}
	if s.monitor == nil {
		mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		s.monitor = mon
	}
	if s.Authority == nil {
		auth, err := authority.New(cfg.Authority)
		if err != nil {
			return nil, fmt.Errorf("authority %q: %w", cfg.Authority.Type, err)
		}
		s.Authority = auth
	}
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			_ = s.Authority.Close()
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		s.sink = sink
	}
	s.emitter = coremetrics.NewEmitter(s.sink, cfg.Metrics.Namespace, s.log.With(map[string]any{"component": "metrics"}), emitterBuffer)

	checker := conflict.New(s.Authority, s.log.With(map[string]any{"component": "conflict"}))
	checker.Guard = cfg.Search.Guard
	s.Engine = &search.Engine{
		Directory:   s.Authority,
		Checker:     checker,
		Log:         s.log.With(map[string]any{"component": "search"}),
		Parallelism: cfg.Search.Parallelism,
		Emitter:     s.emitter,
	}
	s.Committer = &reservation.Committer{
		Reserver: s.Authority,
		Emitter:  s.emitter,
		Monitor:  s.monitor,
		Actor:    cfg.Reservation.Actor,
		Log:      s.log.With(map[string]any{"component": "reservation"}),
	}
	s.Status = &reservation.StatusReader{Describer: s.Authority, Log: s.log}
	return s, nil
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Logger returns the service logger.
func (s *Service) Logger() logger.Logger { return s.log }

// Sink returns the metrics sink events are delivered to.
func (s *Service) Sink() coremetrics.MetricsSink { return s.sink }

// FindWindow runs one search with configured defaults and timeout. It
// returns search.ErrInfeasible when no window exists.
func (s *Service) FindWindow(ctx context.Context, req model.SearchRequest) (model.CandidateWindow, error) {
	if req.Horizon == 0 {
		req.Horizon = s.cfg.Search.Horizon
	}
	if req.Step == 0 {
		req.Step = s.cfg.Search.Step
	}
	if s.cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Search.Timeout)
		defer cancel()
	}
	cand, ok, err := s.Engine.FindWindow(ctx, req)
	if err != nil {
		return model.CandidateWindow{}, err
	}
	if !ok {
		return model.CandidateWindow{}, search.ErrInfeasible
	}
	return cand, nil
}

// Schedule finds a window and commits it unless req.DryRun is set. A commit
// without profile or target fails before any search is run.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error) {
	profile := req.MissionProfile
	if profile == "" {
		profile = s.cfg.Reservation.MissionProfileARN
	}
	if !req.DryRun && (profile == "" || req.Search.Target == "") {
		return ScheduleResult{}, reservation.ErrMissingReference
	}
	cand, err := s.FindWindow(ctx, req.Search)
	if err != nil {
		return ScheduleResult{}, err
	}
	res := ScheduleResult{Candidate: cand, DryRun: req.DryRun}
	if req.DryRun {
		return res, nil
	}
	id, err := s.Committer.Commit(ctx, cand, profile, req.Search.Target)
	if err != nil {
		return res, err
	}
	res.ContactID = id
	return res, nil
}

// Contacts lists bookings intersecting rng. An empty stationID lists every
// station in directory order. Nil statuses means all.
func (s *Service) Contacts(ctx context.Context, stationID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error) {
	ids := []string{stationID}
	if stationID == "" {
		stations, err := s.Authority.ListResources(ctx, rng)
		if err != nil {
			return nil, err
		}
		ids = ids[:0]
		for _, st := range stations {
			ids = append(ids, st.ID)
		}
	}
	var out []model.Booking
	for _, id := range ids {
		b, err := s.Authority.ListBookings(ctx, id, rng, statuses)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// Close flushes pending metrics and releases the sink, the authority and
// the log file.
func (s *Service) Close() error {
	var errs []error
	if err := s.emitter.Close(flushTimeout); err != nil {
		errs = append(errs, err)
	}
	if err := coremetrics.CloseSink(s.sink); err != nil {
		errs = append(errs, fmt.Errorf("metrics sink: %w", err))
	}
	if err := s.Authority.Close(); err != nil {
		errs = append(errs, fmt.Errorf("authority: %w", err))
	}
	s.monitor.Flush(2 * time.Second)
	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
