package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/groundsched/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	events   *prometheus.CounterVec
	searches *prometheus.CounterVec
	duration *prometheus.HistogramVec
	checks   prometheus.Histogram
}

// NewPromSink registers scheduler metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundsched_contact_events_total",
		Help: "Contact reservation outcomes by metric name and ground station",
	}, []string{"name", "ground_station"})
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundsched_searches_total",
		Help: "Window searches by outcome",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groundsched_search_duration_seconds",
		Help:    "Wall-clock duration of window searches",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "groundsched_search_conflict_checks",
		Help:    "Conflict checks issued per window search",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if searches, err = register(reg, searches); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if checks, err = register(reg, checks); err != nil {
		return nil, err
	}
	return &PromSink{events: events, searches: searches, duration: duration, checks: checks}, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCounter adds ev.Value to the event counter.
func (s *PromSink) RecordCounter(ev coremetrics.CounterEvent) error {
	s.events.WithLabelValues(ev.Name, ev.Dimensions["GroundStation"]).Add(ev.Value)
	return nil
}

// RecordSearch counts the search and observes its duration.
func (s *PromSink) RecordSearch(ev coremetrics.SearchEvent) error {
	s.searches.WithLabelValues(ev.Outcome).Inc()
	s.duration.WithLabelValues(ev.Outcome).Observe(ev.Elapsed.Seconds())
	s.checks.Observe(float64(ev.Checks))
	return nil
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
