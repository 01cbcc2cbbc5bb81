package model

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrInvalidWindow is returned when a window does not satisfy Start < End.
var ErrInvalidWindow = errors.New("invalid time window")

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// NewTimeWindow returns the window [start, end) or ErrInvalidWindow when
// start is not strictly before end.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("%w: start %s not before end %s", ErrInvalidWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share any instant. Windows that only
// touch at an endpoint do not overlap.
func Overlaps(a, b TimeWindow) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Overlaps is the method form of the package-level Overlaps.
func (w TimeWindow) Overlaps(o TimeWindow) bool { return Overlaps(w, o) }

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// Pad widens the window by d on both sides.
func (w TimeWindow) Pad(d time.Duration) TimeWindow {
	return TimeWindow{Start: w.Start.Add(-d), End: w.End.Add(d)}
}

// Contains reports whether o lies entirely inside w.
func (w TimeWindow) Contains(o TimeWindow) bool {
	return !o.Start.Before(w.Start) && !o.End.After(w.End)
}

func (w TimeWindow) String() string {
	return w.Start.Format(time.RFC3339) + ".." + w.End.Format(time.RFC3339)
}

// Grid yields the candidate windows {start+k*step, start+k*step+duration}
// for k = 0, 1, 2... while the window still ends within start+horizon.
// Non-positive step or duration yields nothing.
func Grid(start time.Time, step, duration, horizon time.Duration) iter.Seq[TimeWindow] {
	return func(yield func(TimeWindow) bool) {
		if step <= 0 || duration <= 0 {
			return
		}
		limit := start.Add(horizon)
		for s := start; !s.Add(duration).After(limit); s = s.Add(step) {
			if !yield(TimeWindow{Start: s, End: s.Add(duration)}) {
				return
			}
		}
	}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTime parses an ISO-8601 timestamp. Times without a zone are UTC.
// The result is always in UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 time", ErrMalformedRequest, s)
}
