package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/model"
)

func TestGetStatusIdempotent(t *testing.T) {
	mem := authority.NewMemory(gs1)
	mem.AddBooking(model.Booking{ID: "c-1", ResourceID: gs1.ID, Window: cand.Window, Status: model.StatusExecuting})
	s := &StatusReader{Describer: mem}

	first, ok := s.GetStatus(context.Background(), "c-1")
	require.True(t, ok)
	second, ok := s.GetStatus(context.Background(), "c-1")
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, model.BookingInfo{ID: "c-1", Status: model.StatusExecuting, Window: cand.Window, ResourceID: gs1.ID}, first)
}

func TestGetStatusAbsent(t *testing.T) {
	mem := authority.NewMemory(gs1)
	s := &StatusReader{Describer: mem}

	_, ok := s.GetStatus(context.Background(), "missing")
	assert.False(t, ok)
	_, ok = s.GetStatus(context.Background(), "")
	assert.False(t, ok)

	mem.AddBooking(model.Booking{ID: "c-1", ResourceID: gs1.ID, Window: cand.Window, Status: model.StatusScheduled})
	mem.DescribeErr = errors.New("access denied")
	_, ok = s.GetStatus(context.Background(), "c-1")
	assert.False(t, ok)
}
