package groundstation

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/groundstation"
	"github.com/aws/aws-sdk-go-v2/service/groundstation/types"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/model"
)

// Authority implements authority.Authority on top of AWS Ground Station.
type Authority struct {
	api API
	cfg Config
}

// NewWithClient wraps an existing client.
func NewWithClient(api API, cfg Config) *Authority {
	return &Authority{api: api, cfg: cfg}
}

// ListResources returns every ground station in API order. The window is not
// sent: the API has no time filter for stations.
func (a *Authority) ListResources(ctx context.Context, _ model.TimeWindow) ([]model.Resource, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	p := groundstation.NewListGroundStationsPaginator(a.api, &groundstation.ListGroundStationsInput{
		SatelliteId: optString(a.cfg.SatelliteID),
	})
	var out []model.Resource
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", authority.ErrDirectoryUnavailable, err)
		}
		for _, gs := range page.GroundStationList {
			out = append(out, model.Resource{
				ID:       aws.ToString(gs.GroundStationId),
				Name:     aws.ToString(gs.GroundStationName),
				Locality: aws.ToString(gs.Region),
			})
		}
	}
	return out, nil
}

// ListBookings lists contacts on one ground station within rng.
func (a *Authority) ListBookings(ctx context.Context, resourceID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	in := &groundstation.ListContactsInput{
		StartTime:     aws.Time(rng.Start),
		EndTime:       aws.Time(rng.End),
		GroundStation: aws.String(resourceID),
		StatusList:    toContactStatuses(statuses),
	}
	p := groundstation.NewListContactsPaginator(a.api, in)
	var out []model.Booking
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", authority.ErrConflictQueryUnavailable, err)
		}
		for _, c := range page.ContactList {
			out = append(out, model.Booking{
				ID:         aws.ToString(c.ContactId),
				Window:     model.TimeWindow{Start: aws.ToTime(c.StartTime), End: aws.ToTime(c.EndTime)},
				ResourceID: aws.ToString(c.GroundStation),
				Status:     model.ParseBookingStatus(string(c.ContactStatus)),
			})
		}
	}
	return out, nil
}

// Reserve calls ReserveContact once.
func (a *Authority) Reserve(ctx context.Context, in authority.ReserveInput) (string, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	out, err := a.api.ReserveContact(ctx, &groundstation.ReserveContactInput{
		MissionProfileArn: aws.String(in.ProfileRef),
		SatelliteArn:      aws.String(in.TargetRef),
		StartTime:         aws.Time(in.Window.Start),
		EndTime:           aws.Time(in.Window.End),
		GroundStation:     aws.String(in.ResourceID),
		Tags:              in.Tags,
	})
	if err != nil {
		return "", classify(err, false)
	}
	return aws.ToString(out.ContactId), nil
}

// Describe calls DescribeContact.
func (a *Authority) Describe(ctx context.Context, id string) (model.BookingInfo, error) {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	out, err := a.api.DescribeContact(ctx, &groundstation.DescribeContactInput{ContactId: aws.String(id)})
	if err != nil {
		return model.BookingInfo{}, classify(err, true)
	}
	return model.BookingInfo{
		ID:         aws.ToString(out.ContactId),
		Status:     model.ParseBookingStatus(string(out.ContactStatus)),
		Window:     model.TimeWindow{Start: aws.ToTime(out.StartTime), End: aws.ToTime(out.EndTime)},
		ResourceID: aws.ToString(out.GroundStation),
	}, nil
}

// Close is a no-op; the SDK client holds no connections that need release.
func (a *Authority) Close() error { return nil }

// toContactStatuses maps statuses to the API's status list. The API has no
// EXECUTING state: an executing contact is PREPASS, PASS or POSTPASS. No
// statuses means every status, since the API requires a non-empty list.
func toContactStatuses(statuses []model.BookingStatus) []types.ContactStatus {
	if len(statuses) == 0 {
		return types.ContactStatus("").Values()
	}
	var out []types.ContactStatus
	for _, s := range statuses {
		wire := []types.ContactStatus{types.ContactStatus(s.String())}
		if s == model.StatusExecuting {
			wire = []types.ContactStatus{types.ContactStatusPrepass, types.ContactStatusPass, types.ContactStatusPostpass}
		}
		for _, w := range wire {
			if !slices.Contains(out, w) {
				out = append(out, w)
			}
		}
	}
	return out
}

var _ authority.Authority = (*Authority)(nil)
