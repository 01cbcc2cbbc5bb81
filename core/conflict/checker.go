// Package conflict decides whether a candidate window collides with an
// existing booking on a ground station.
package conflict

import (
	"context"
	"time"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/core/model"
)

// DefaultGuard pads the booking query on each side of the candidate window.
const DefaultGuard = time.Hour

// Checker queries live bookings through the authority. It holds no state
// between calls.
type Checker struct {
	Bookings authority.BookingLister
	Guard    time.Duration
	Log      logger.Logger
}

// New returns a checker with the default guard.
func New(bookings authority.BookingLister, log logger.Logger) *Checker {
	return &Checker{Bookings: bookings, Guard: DefaultGuard, Log: log}
}

// HasConflict reports whether window overlaps a live booking on res.
// When the authority cannot answer, it reports a conflict: a missed slot is
// preferable to a double booking.
func (c *Checker) HasConflict(ctx context.Context, window model.TimeWindow, res model.Resource) bool {
	log := logger.OrNop(c.Log)
	guard := c.Guard
	if guard <= 0 {
		guard = DefaultGuard
	}
	bookings, err := c.Bookings.ListBookings(ctx, res.ID, window.Pad(guard), model.LiveStatuses())
	if err != nil {
		log.Errorf("conflict check on %s for %s failed, assuming conflict: %v", res.ID, window, err)
		return true
	}
	for _, b := range bookings {
		if !b.Status.IsLive() {
			continue
		}
		if window.Overlaps(b.Window) {
			log.Debugf("slot %s on %s conflicts with booking %s", window, res.ID, b.ID)
			return true
		}
	}
	return false
}
