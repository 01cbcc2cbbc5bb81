package model

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// Defaults applied to a SearchRequest by WithDefaults.
const (
	DefaultHorizon = 24 * time.Hour
	DefaultStep    = 15 * time.Minute
)

// ErrMalformedRequest marks structural input errors detected before any I/O.
var ErrMalformedRequest = errors.New("malformed request")

// SearchRequest describes one window search. It is not modified once the
// search starts.
type SearchRequest struct {
	Target         string        `json:"target" yaml:"target"`
	PreferredStart time.Time     `json:"preferred_start" yaml:"preferred_start"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Horizon        time.Duration `json:"horizon" yaml:"horizon"`
	Step           time.Duration `json:"step" yaml:"step"`
}

// WithDefaults returns a copy with a zero Horizon or Step replaced by the
// package defaults.
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.Horizon == 0 {
		r.Horizon = DefaultHorizon
	}
	if r.Step == 0 {
		r.Step = DefaultStep
	}
	return r
}

// Validate checks the structural constraints of the request.
func (r SearchRequest) Validate() error {
	switch {
	case r.PreferredStart.IsZero():
		return fmt.Errorf("%w: preferred start is required", ErrMalformedRequest)
	case r.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrMalformedRequest, r.Duration)
	case r.Step <= 0:
		return fmt.Errorf("%w: step must be positive, got %s", ErrMalformedRequest, r.Step)
	case r.Horizon <= 0:
		return fmt.Errorf("%w: horizon must be positive, got %s", ErrMalformedRequest, r.Horizon)
	}
	return nil
}

// SearchRange is the whole interval the search may look into.
func (r SearchRequest) SearchRange() TimeWindow {
	return TimeWindow{Start: r.PreferredStart, End: r.PreferredStart.Add(r.Horizon)}
}

// Slots yields the request's candidate windows in ascending start order.
func (r SearchRequest) Slots() iter.Seq[TimeWindow] {
	return Grid(r.PreferredStart, r.Step, r.Duration, r.Horizon)
}

// CandidateWindow is a conflict-free (resource, window) pair not yet committed.
type CandidateWindow struct {
	Window   TimeWindow `json:"window" yaml:"window"`
	Resource Resource   `json:"resource" yaml:"resource"`
}
