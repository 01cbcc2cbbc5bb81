// Package reservation commits a found window as a contact booking and reads
// back the state of committed bookings.
package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/core/metrics"
	"github.com/kilianp07/groundsched/core/model"
	"github.com/kilianp07/groundsched/core/monitoring"
)

// DefaultActor identifies this scheduler in booking tags.
const DefaultActor = "AutomatedScheduler"

// Booking tag keys.
const (
	TagScheduledBy   = "ScheduledBy"
	TagSatelliteID   = "SatelliteId"
	TagGroundStation = "GroundStation"
)

// ErrMissingReference is returned when the profile or target reference is
// empty.
var ErrMissingReference = fmt.Errorf("%w: profile and target references are required", model.ErrMalformedRequest)

// CommitError reports a reservation the authority did not accept.
type CommitError struct {
	Candidate model.CandidateWindow
	Cause     error
	// Rejected is true when the authority refused the request itself rather
	// than failing to answer.
	Rejected bool
}

func (e *CommitError) Error() string {
	kind := "failed"
	if e.Rejected {
		kind = "rejected"
	}
	return fmt.Sprintf("reservation of %s on %s %s: %v", e.Candidate.Window, e.Candidate.Resource.ID, kind, e.Cause)
}

func (e *CommitError) Unwrap() error { return e.Cause }

// AsCommitError extracts a *CommitError from err.
func AsCommitError(err error) (*CommitError, bool) {
	var ce *CommitError
	ok := errors.As(err, &ce)
	return ce, ok
}

// Committer makes a single reservation attempt per call. It never retries.
type Committer struct {
	Reserver authority.Reserver
	Emitter  *metrics.Emitter
	Monitor  monitoring.Monitor
	Actor    string
	Log      logger.Logger
}

// Commit reserves cand and returns the booking id. The outcome counter is
// queued on the emitter after the authority has answered; its delivery never
// affects the returned values.
func (c *Committer) Commit(ctx context.Context, cand model.CandidateWindow, profileRef, targetRef string) (string, error) {
	if profileRef == "" || targetRef == "" {
		return "", ErrMissingReference
	}
	log := logger.OrNop(c.Log)
	actor := c.Actor
	if actor == "" {
		actor = DefaultActor
	}
	in := authority.ReserveInput{
		ProfileRef: profileRef,
		TargetRef:  targetRef,
		Window:     cand.Window,
		ResourceID: cand.Resource.ID,
		Tags: map[string]string{
			TagScheduledBy:   actor,
			TagSatelliteID:   targetRef,
			TagGroundStation: stationName(cand.Resource),
		},
	}
	dims := map[string]string{TagGroundStation: stationName(cand.Resource)}

	id, err := c.Reserver.Reserve(ctx, in)
	if err != nil {
		cerr := &CommitError{Candidate: cand, Cause: err, Rejected: authority.IsRejected(err)}
		c.Emitter.Count(metrics.MetricContactSchedulingFailed, dims)
		monitoring.OrNop(c.Monitor).CaptureException(cerr, map[string]string{
			"ground_station": cand.Resource.ID,
			"rejected":       fmt.Sprint(cerr.Rejected),
		})
		log.Errorf("%v", cerr)
		return "", cerr
	}
	c.Emitter.Count(metrics.MetricContactScheduled, dims)
	log.Infof("contact %s scheduled on %s for %s", id, cand.Resource.ID, cand.Window)
	return id, nil
}

func stationName(r model.Resource) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
