package metrics

import (
	"errors"
	"io"
	"time"
)

// Metric names and defaults shared by every sink.
const (
	DefaultNamespace = "GroundStation/Scheduler"

	MetricContactScheduled        = "ContactScheduled"
	MetricContactSchedulingFailed = "ContactSchedulingFailed"

	UnitCount = "Count"
)

// CounterEvent is a single counter increment.
type CounterEvent struct {
	Namespace  string
	Name       string
	Value      float64
	Unit       string
	Time       time.Time
	Dimensions map[string]string
}

// MetricsSink records counter events.
type MetricsSink interface {
	RecordCounter(ev CounterEvent) error
}

// Search outcomes reported in SearchEvent.Outcome.
const (
	OutcomeFound        = "found"
	OutcomeInfeasible   = "infeasible"
	OutcomeNoCandidates = "no_candidates"
	OutcomeAborted      = "aborted"
)

// SearchEvent summarises one window search.
type SearchEvent struct {
	Target     string
	Outcome    string
	ResourceID string
	Checks     int
	Elapsed    time.Duration
	Time       time.Time
}

// SearchRecorder is implemented by sinks able to record search summaries.
type SearchRecorder interface {
	RecordSearch(ev SearchEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCounter(CounterEvent) error { return nil }
func (NopSink) RecordSearch(SearchEvent) error   { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCounter forwards the event to every sink. All sinks are tried; the
// first error is returned.
func (m *MultiSink) RecordCounter(ev CounterEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordCounter(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordSearch forwards the summary to sinks that support it.
func (m *MultiSink) RecordSearch(ev SearchEvent) error {
	var first error
	for _, s := range m.Sinks {
		if rec, ok := s.(SearchRecorder); ok {
			if err := rec.RecordSearch(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, CloseSink(s))
	}
	return errors.Join(errs...)
}

// CloseSink closes s when it holds resources.
func CloseSink(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
