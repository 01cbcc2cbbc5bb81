// Package authority defines the capabilities the scheduler needs from the
// external booking authority: listing antennas, listing bookings, reserving
// a contact and describing one. Adapters (AWS Ground Station, the local
// sqlite store) live under infra/ and register themselves by type name.
package authority

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/groundsched/core/factory"
	"github.com/kilianp07/groundsched/core/model"
)

var (
	// ErrDirectoryUnavailable is returned when the resource directory cannot
	// answer.
	ErrDirectoryUnavailable = errors.New("resource directory unavailable")
	// ErrConflictQueryUnavailable is returned when existing bookings cannot be
	// listed.
	ErrConflictQueryUnavailable = errors.New("booking query unavailable")
	// ErrRejected marks a request the authority refused on its merits
	// (invalid reference, resource taken, quota). Retrying it unchanged will
	// not help.
	ErrRejected = errors.New("rejected by authority")
	// ErrNotFound is returned when a booking id is unknown.
	ErrNotFound = errors.New("booking not found")
)

// IsRejected reports whether err is a client-class rejection.
func IsRejected(err error) bool { return errors.Is(err, ErrRejected) }

// Directory lists the antennas that may be booked. The window is passed for
// completeness; implementations return the full candidate set regardless.
type Directory interface {
	ListResources(ctx context.Context, window model.TimeWindow) ([]model.Resource, error)
}

// BookingLister lists bookings on one resource that intersect rng and are in
// one of statuses.
type BookingLister interface {
	ListBookings(ctx context.Context, resourceID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error)
}

// ReserveInput is everything needed to commit a contact.
type ReserveInput struct {
	ProfileRef string
	TargetRef  string
	Window     model.TimeWindow
	ResourceID string
	Tags       map[string]string
}

// Reserver commits a booking and returns its id.
type Reserver interface {
	Reserve(ctx context.Context, in ReserveInput) (string, error)
}

// Describer looks up a booking by id.
type Describer interface {
	Describe(ctx context.Context, id string) (model.BookingInfo, error)
}

// Authority bundles every capability. Close releases connections.
type Authority interface {
	Directory
	BookingLister
	Reserver
	Describer
	Close() error
}

var registry = factory.NewRegistry[Authority]("authority")

// Register adds an authority backend factory.
func Register(name string, f factory.Factory[Authority]) error {
	return registry.Register(name, f)
}

// New builds the authority selected by cfg.Type.
func New(cfg factory.ModuleConfig) (Authority, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("authority type is required (one of %v)", registry.Names())
	}
	return registry.Create(cfg)
}

// Types lists registered backend names.
func Types() []string { return registry.Names() }
