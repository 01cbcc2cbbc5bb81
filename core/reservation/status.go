package reservation

import (
	"context"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/logger"
	"github.com/kilianp07/groundsched/core/model"
)

// StatusReader looks up committed bookings. Lookups are best effort.
type StatusReader struct {
	Describer authority.Describer
	Log       logger.Logger
}

// GetStatus returns the booking and true, or false when the authority does
// not know id or cannot answer.
func (s *StatusReader) GetStatus(ctx context.Context, id string) (model.BookingInfo, bool) {
	if id == "" {
		return model.BookingInfo{}, false
	}
	info, err := s.Describer.Describe(ctx, id)
	if err != nil {
		logger.OrNop(s.Log).Errorf("describing contact %s: %v", id, err)
		return model.BookingInfo{}, false
	}
	return info, true
}
