// Package search finds the first conflict-free contact window across the
// ground stations returned by the directory.
//
// The scan is resource-greedy: every slot of the first station is tried
// before the second station is considered, so station order is a priority.
// It is first-fit: the first free slot wins, no ranking is attempted.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/core/metrics"
	"github.com/kilianp07/groundsched/core/model"
)

var (
	// ErrSearchAborted is returned when the caller's context ends mid-search.
	ErrSearchAborted = errors.New("window search aborted")
	// ErrInfeasible is what callers report when FindWindow comes back empty.
	ErrInfeasible = errors.New("no conflict-free window within horizon")
)

// ConflictChecker reports whether a slot collides with an existing booking.
// Implementations absorb their own failures.
type ConflictChecker interface {
	HasConflict(ctx context.Context, window model.TimeWindow, res model.Resource) bool
}

// Engine runs window searches. The zero value is not usable: Directory and
// Checker are required.
type Engine struct {
	Directory authority.Directory
	Checker   ConflictChecker
	Log       logger.Logger
	// Parallelism above 1 scans that many stations concurrently. Station
	// priority is preserved.
	Parallelism int
	Emitter     *metrics.Emitter
}

type scanResult struct {
	window  model.TimeWindow
	found   bool
	aborted error
}

// FindWindow returns the first free (station, slot) pair for req. A false
// result with a nil error means no window exists in the horizon or no
// station could be listed. Errors are limited to malformed requests and
// the context ending before the scan could conclude.
func (e *Engine) FindWindow(ctx context.Context, req model.SearchRequest) (model.CandidateWindow, bool, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return model.CandidateWindow{}, false, err
	}

	log := logger.OrNop(e.Log).With(map[string]any{
		"search_id": uuid.NewString(),
		"target":    req.Target,
	})
	started := time.Now()
	var checks atomic.Int64
	summary := func(outcome, resourceID string) {
		e.Emitter.Search(metrics.SearchEvent{
			Target:     req.Target,
			Outcome:    outcome,
			ResourceID: resourceID,
			Checks:     int(checks.Load()),
			Elapsed:    time.Since(started),
		})
	}

	resources, err := e.Directory.ListResources(ctx, req.SearchRange())
	if err != nil {
		if ctx.Err() != nil {
			summary(metrics.OutcomeAborted, "")
			return model.CandidateWindow{}, false, fmt.Errorf("%w: %w", ErrSearchAborted, ctx.Err())
		}
		log.Errorf("listing ground stations: %v", err)
		summary(metrics.OutcomeNoCandidates, "")
		return model.CandidateWindow{}, false, nil
	}
	if len(resources) == 0 {
		log.Errorf("no ground stations returned by directory")
		summary(metrics.OutcomeNoCandidates, "")
		return model.CandidateWindow{}, false, nil
	}

	log.Debugw("searching", map[string]any{
		"stations": len(resources),
		"start":    req.PreferredStart,
		"duration": req.Duration.String(),
		"horizon":  req.Horizon.String(),
		"step":     req.Step.String(),
	})

	var results []scanResult
	if e.Parallelism > 1 && len(resources) > 1 {
		results = e.scanParallel(ctx, req, resources, &checks)
	} else {
		results = e.scanSequential(ctx, req, resources, &checks)
	}

	for i, r := range results {
		if r.aborted != nil {
			summary(metrics.OutcomeAborted, "")
			log.Warnf("search aborted after %d checks: %v", checks.Load(), r.aborted)
			return model.CandidateWindow{}, false, fmt.Errorf("%w: %w", ErrSearchAborted, r.aborted)
		}
		if r.found {
			cand := model.CandidateWindow{Window: r.window, Resource: resources[i]}
			summary(metrics.OutcomeFound, cand.Resource.ID)
			log.Infof("found window %s on %s after %d checks", cand.Window, cand.Resource.ID, checks.Load())
			return cand, true, nil
		}
	}
	summary(metrics.OutcomeInfeasible, "")
	log.Infof("no free window within %s on %d stations", req.Horizon, len(resources))
	return model.CandidateWindow{}, false, nil
}

// scanSequential scans stations one after the other, stopping at the first
// hit. The returned slice is indexed like resources.
func (e *Engine) scanSequential(ctx context.Context, req model.SearchRequest, resources []model.Resource, checks *atomic.Int64) []scanResult {
	results := make([]scanResult, len(resources))
	for i, res := range Resources(resources) {
		results[i] = e.scanOne(ctx, req, res, checks)
		if results[i].found || results[i].aborted != nil {
			break
		}
	}
	return results
}

// scanParallel scans stations concurrently. A hit on station i cancels the
// scans of lower-priority stations but every higher-priority scan runs to
// completion, so the outcome matches scanSequential.
func (e *Engine) scanParallel(ctx context.Context, req model.SearchRequest, resources []model.Resource, checks *atomic.Int64) []scanResult {
	n := len(resources)
	results := make([]scanResult, n)
	ctxs := make([]context.Context, n)
	cancels := make([]context.CancelFunc, n)
	for i := range resources {
		ctxs[i], cancels[i] = context.WithCancel(ctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(e.Parallelism)
	for i, res := range Resources(resources) {
		g.Go(func() error {
			results[i] = e.scanOne(ctxs[i], req, res, checks)
			if results[i].found {
				for j := i + 1; j < n; j++ {
					cancels[j]()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) scanOne(ctx context.Context, req model.SearchRequest, res model.Resource, checks *atomic.Int64) scanResult {
	var aborted error
	w, ok := FirstMatch(Offsets(req), func(w model.TimeWindow) bool {
		if err := ctx.Err(); err != nil {
			aborted = err
			return true
		}
		checks.Add(1)
		return !e.Checker.HasConflict(ctx, w, res)
	})
	if aborted == nil && !ok {
		// a check cut short by cancellation reads as a conflict
		aborted = ctx.Err()
	}
	if aborted != nil {
		return scanResult{aborted: aborted}
	}
	return scanResult{window: w, found: ok}
}
