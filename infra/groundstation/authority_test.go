package groundstation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/groundstation"
	"github.com/aws/aws-sdk-go-v2/service/groundstation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/model"
)

var t0 = time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)

type fakeAPI struct {
	stationPages [][]types.GroundStationData
	contactPages [][]types.ContactData
	listErr      error
	reserveErr   error
	describeErr  error

	contactInputs []*groundstation.ListContactsInput
	reserveInput  *groundstation.ReserveContactInput
}

func (f *fakeAPI) ListGroundStations(_ context.Context, in *groundstation.ListGroundStationsInput, _ ...func(*groundstation.Options)) (*groundstation.ListGroundStationsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := pageIndex(in.NextToken)
	out := &groundstation.ListGroundStationsOutput{GroundStationList: f.stationPages[page]}
	if page+1 < len(f.stationPages) {
		out.NextToken = aws.String(string(rune('1' + page)))
	}
	return out, nil
}

func (f *fakeAPI) ListContacts(_ context.Context, in *groundstation.ListContactsInput, _ ...func(*groundstation.Options)) (*groundstation.ListContactsOutput, error) {
	f.contactInputs = append(f.contactInputs, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := pageIndex(in.NextToken)
	if len(f.contactPages) == 0 {
		return &groundstation.ListContactsOutput{}, nil
	}
	out := &groundstation.ListContactsOutput{ContactList: f.contactPages[page]}
	if page+1 < len(f.contactPages) {
		out.NextToken = aws.String(string(rune('1' + page)))
	}
	return out, nil
}

func (f *fakeAPI) ReserveContact(_ context.Context, in *groundstation.ReserveContactInput, _ ...func(*groundstation.Options)) (*groundstation.ReserveContactOutput, error) {
	f.reserveInput = in
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	return &groundstation.ReserveContactOutput{ContactId: aws.String("c-123")}, nil
}

func (f *fakeAPI) DescribeContact(_ context.Context, in *groundstation.DescribeContactInput, _ ...func(*groundstation.Options)) (*groundstation.DescribeContactOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &groundstation.DescribeContactOutput{
		ContactId:     in.ContactId,
		ContactStatus: types.ContactStatusScheduled,
		StartTime:     aws.Time(t0),
		EndTime:       aws.Time(t0.Add(10 * time.Minute)),
		GroundStation: aws.String("Ohio 1"),
	}, nil
}

func pageIndex(token *string) int {
	if token == nil {
		return 0
	}
	return int(aws.ToString(token)[0] - '0')
}

func TestListResourcesPaginates(t *testing.T) {
	api := &fakeAPI{stationPages: [][]types.GroundStationData{
		{{GroundStationId: aws.String("Ohio 1"), GroundStationName: aws.String("Ohio 1"), Region: aws.String("us-east-2")}},
		{{GroundStationId: aws.String("Oregon 1"), GroundStationName: aws.String("Oregon 1"), Region: aws.String("us-west-2")}},
	}}
	a := NewWithClient(api, Config{})
	got, err := a.ListResources(context.Background(), model.TimeWindow{})
	require.NoError(t, err)
	assert.Equal(t, []model.Resource{
		{ID: "Ohio 1", Name: "Ohio 1", Locality: "us-east-2"},
		{ID: "Oregon 1", Name: "Oregon 1", Locality: "us-west-2"},
	}, got)
}

func TestListResourcesUnavailable(t *testing.T) {
	a := NewWithClient(&fakeAPI{listErr: errors.New("dial tcp: timeout")}, Config{})
	_, err := a.ListResources(context.Background(), model.TimeWindow{})
	assert.ErrorIs(t, err, authority.ErrDirectoryUnavailable)
}

func TestListBookings(t *testing.T) {
	api := &fakeAPI{contactPages: [][]types.ContactData{{
		{ContactId: aws.String("c-1"), ContactStatus: types.ContactStatusScheduled, StartTime: aws.Time(t0), EndTime: aws.Time(t0.Add(10 * time.Minute)), GroundStation: aws.String("Ohio 1")},
		{ContactId: aws.String("c-2"), ContactStatus: types.ContactStatusPass, StartTime: aws.Time(t0.Add(time.Hour)), EndTime: aws.Time(t0.Add(70 * time.Minute)), GroundStation: aws.String("Ohio 1")},
	}}}
	a := NewWithClient(api, Config{CallTimeout: time.Second})
	rng := model.TimeWindow{Start: t0.Add(-time.Hour), End: t0.Add(2 * time.Hour)}
	got, err := a.ListBookings(context.Background(), "Ohio 1", rng, model.LiveStatuses())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.StatusPass, got[1].Status)
	assert.True(t, got[1].Status.IsLive())
	assert.Equal(t, t0, got[0].Window.Start)

	in := api.contactInputs[0]
	assert.Equal(t, "Ohio 1", aws.ToString(in.GroundStation))
	assert.Equal(t, rng.Start, aws.ToTime(in.StartTime))
	assert.Equal(t, []types.ContactStatus{
		types.ContactStatusScheduled, types.ContactStatusPrepass, types.ContactStatusPass, types.ContactStatusPostpass,
	}, in.StatusList)
}

func TestToContactStatuses(t *testing.T) {
	assert.Equal(t, types.ContactStatus("").Values(), toContactStatuses(nil))
	assert.Contains(t, toContactStatuses(nil), types.ContactStatusAwsFailed)

	assert.Equal(t, []types.ContactStatus{types.ContactStatusPrepass, types.ContactStatusPass, types.ContactStatusPostpass},
		toContactStatuses([]model.BookingStatus{model.StatusExecuting, model.StatusPass}))
	assert.Equal(t, []types.ContactStatus{types.ContactStatusCancelled, types.ContactStatusFailedToSchedule},
		toContactStatuses([]model.BookingStatus{model.StatusCancelled, model.StatusFailedToSchedule}))

	valid := types.ContactStatus("").Values()
	for _, st := range toContactStatuses(model.LiveStatuses()) {
		assert.Contains(t, valid, st)
	}
}

func TestListBookingsUnavailable(t *testing.T) {
	a := NewWithClient(&fakeAPI{listErr: errors.New("throttled")}, Config{})
	_, err := a.ListBookings(context.Background(), "Ohio 1", model.TimeWindow{Start: t0, End: t0.Add(time.Hour)}, nil)
	assert.ErrorIs(t, err, authority.ErrConflictQueryUnavailable)
}

func TestReserve(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithClient(api, Config{})
	w := model.TimeWindow{Start: t0, End: t0.Add(10 * time.Minute)}
	id, err := a.Reserve(context.Background(), authority.ReserveInput{
		ProfileRef: "arn:profile", TargetRef: "arn:sat", Window: w, ResourceID: "Ohio 1",
		Tags: map[string]string{"ScheduledBy": "AutomatedScheduler"},
	})
	require.NoError(t, err)
	assert.Equal(t, "c-123", id)
	assert.Equal(t, "arn:profile", aws.ToString(api.reserveInput.MissionProfileArn))
	assert.Equal(t, "arn:sat", aws.ToString(api.reserveInput.SatelliteArn))
	assert.Equal(t, w.End, aws.ToTime(api.reserveInput.EndTime))
	assert.Equal(t, "AutomatedScheduler", api.reserveInput.Tags["ScheduledBy"])
}

func TestReserveErrorClassification(t *testing.T) {
	clientErr := &smithy.GenericAPIError{Code: "InvalidParameterException", Message: "bad arn", Fault: smithy.FaultClient}
	a := NewWithClient(&fakeAPI{reserveErr: clientErr}, Config{})
	_, err := a.Reserve(context.Background(), authority.ReserveInput{})
	assert.True(t, authority.IsRejected(err))
	assert.ErrorContains(t, err, "bad arn")

	serverErr := &smithy.GenericAPIError{Code: "DependencyException", Message: "try later", Fault: smithy.FaultServer}
	a = NewWithClient(&fakeAPI{reserveErr: serverErr}, Config{})
	_, err = a.Reserve(context.Background(), authority.ReserveInput{})
	assert.False(t, authority.IsRejected(err))
	var ae smithy.APIError
	assert.ErrorAs(t, err, &ae)
}

func TestDescribe(t *testing.T) {
	a := NewWithClient(&fakeAPI{}, Config{})
	info, err := a.Describe(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, model.BookingInfo{
		ID: "c-1", Status: model.StatusScheduled,
		Window:     model.TimeWindow{Start: t0, End: t0.Add(10 * time.Minute)},
		ResourceID: "Ohio 1",
	}, info)

	notFound := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no contact", Fault: smithy.FaultClient}
	a = NewWithClient(&fakeAPI{describeErr: notFound}, Config{})
	_, err = a.Describe(context.Background(), "c-404")
	assert.ErrorIs(t, err, authority.ErrNotFound)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, authority.Types(), "groundstation")
}
