package authority

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kilianp07/groundsched/core/factory"
	"github.com/kilianp07/groundsched/core/model"
)

func init() {
	_ = Register("memory", func(conf map[string]any) (Authority, error) {
		var c struct {
			Stations []model.Resource `json:"stations"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMemory(c.Stations...), nil
	})
}

// Memory is an in-process authority. It backs dry runs without cloud access
// and doubles as a fake in tests: the *Err fields inject failures.
type Memory struct {
	mu        sync.Mutex
	resources []model.Resource
	bookings  []model.Booking
	seq       int

	DirectoryErr error
	ListErr      error
	ReserveErr   error
	DescribeErr  error

	// ListCalls counts ListBookings invocations.
	ListCalls int
}

// NewMemory returns an authority knowing the given resources, in order.
func NewMemory(resources ...model.Resource) *Memory {
	return &Memory{resources: slices.Clone(resources)}
}

// AddBooking records an existing booking.
func (m *Memory) AddBooking(b model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, b)
}

// Bookings returns a copy of every stored booking.
func (m *Memory) Bookings() []model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.bookings)
}

func (m *Memory) ListResources(ctx context.Context, _ model.TimeWindow) ([]model.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DirectoryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, m.DirectoryErr)
	}
	return slices.Clone(m.resources), nil
}

func (m *Memory) ListBookings(ctx context.Context, resourceID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflictQueryUnavailable, m.ListErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflictQueryUnavailable, err)
	}
	var out []model.Booking
	for _, b := range m.bookings {
		if b.ResourceID != resourceID || !model.Overlaps(b.Window, rng) {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) Reserve(ctx context.Context, in ReserveInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReserveErr != nil {
		return "", m.ReserveErr
	}
	if !slices.ContainsFunc(m.resources, func(r model.Resource) bool { return r.ID == in.ResourceID }) {
		return "", fmt.Errorf("%w: unknown ground station %s", ErrRejected, in.ResourceID)
	}
	for _, b := range m.bookings {
		if b.ResourceID == in.ResourceID && b.Status.IsLive() && model.Overlaps(b.Window, in.Window) {
			return "", fmt.Errorf("%w: ground station %s no longer available (overlaps %s)", ErrRejected, in.ResourceID, b.ID)
		}
	}
	m.seq++
	id := fmt.Sprintf("mem-%06d", m.seq)
	m.bookings = append(m.bookings, model.Booking{
		ID:         id,
		Window:     in.Window,
		ResourceID: in.ResourceID,
		Status:     model.StatusScheduled,
	})
	return id, nil
}

func (m *Memory) Describe(ctx context.Context, id string) (model.BookingInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DescribeErr != nil {
		return model.BookingInfo{}, m.DescribeErr
	}
	for _, b := range m.bookings {
		if b.ID == id {
			return model.BookingInfo{ID: b.ID, Status: b.Status, Window: b.Window, ResourceID: b.ResourceID}, nil
		}
	}
	return model.BookingInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *Memory) Close() error { return nil }
