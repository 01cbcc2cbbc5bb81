package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequestDefaults(t *testing.T) {
	r := SearchRequest{PreferredStart: t0, Duration: 10 * time.Minute}.WithDefaults()
	assert.Equal(t, 24*time.Hour, r.Horizon)
	assert.Equal(t, 15*time.Minute, r.Step)
	require.NoError(t, r.Validate())
	assert.Equal(t, t0.Add(24*time.Hour), r.SearchRange().End)

	custom := SearchRequest{PreferredStart: t0, Duration: time.Minute, Horizon: time.Hour, Step: time.Minute}.WithDefaults()
	assert.Equal(t, time.Hour, custom.Horizon)
	assert.Equal(t, time.Minute, custom.Step)
}

func TestSearchRequestValidate(t *testing.T) {
	base := SearchRequest{PreferredStart: t0, Duration: time.Minute, Horizon: time.Hour, Step: time.Minute}
	bad := map[string]SearchRequest{
		"zero start":        {Duration: time.Minute, Horizon: time.Hour, Step: time.Minute},
		"zero duration":     {PreferredStart: t0, Horizon: time.Hour, Step: time.Minute},
		"negative duration": {PreferredStart: t0, Duration: -time.Minute, Horizon: time.Hour, Step: time.Minute},
		"negative step":     {PreferredStart: t0, Duration: time.Minute, Horizon: time.Hour, Step: -time.Minute},
		"zero horizon":      {PreferredStart: t0, Duration: time.Minute, Step: time.Minute},
	}
	require.NoError(t, base.Validate())
	for name, r := range bad {
		assert.ErrorIs(t, r.Validate(), ErrMalformedRequest, name)
	}
}

func TestSearchRequestSlots(t *testing.T) {
	r := SearchRequest{PreferredStart: t0, Duration: 10 * time.Minute, Horizon: 30 * time.Minute, Step: 10 * time.Minute}
	var starts []time.Time
	for w := range r.Slots() {
		starts = append(starts, w.Start)
	}
	assert.Equal(t, []time.Time{t0, t0.Add(10 * time.Minute), t0.Add(20 * time.Minute)}, starts)
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, StatusScheduled.IsLive())
	for _, s := range []BookingStatus{StatusExecuting, StatusPrepass, StatusPass, StatusPostpass} {
		assert.True(t, s.IsLive(), s.String())
	}
	for _, s := range []BookingStatus{StatusCompleted, StatusFailed, StatusCancelled, StatusAWSCancelled, StatusUnknown} {
		assert.False(t, s.IsLive(), s.String())
	}
	assert.Equal(t, StatusFailedToSchedule, ParseBookingStatus("failed_to_schedule"))
	assert.Equal(t, StatusUnknown, ParseBookingStatus("bogus"))
	assert.Equal(t, "UNKNOWN", BookingStatus(99).String())
	assert.Equal(t, StatusPass, ParseBookingStatus("PASS"))
	assert.Equal(t, StatusPrepass, ParseBookingStatus("prepass"))
	assert.Equal(t, StatusPostpass, ParseBookingStatus("POSTPASS"))
	for _, s := range LiveStatuses() {
		assert.True(t, s.IsLive(), s.String())
	}
	assert.Contains(t, LiveStatuses(), StatusPass)
}

func TestBookingStatusJSON(t *testing.T) {
	info := BookingInfo{ID: "c1", Status: StatusExecuting, Window: win(0, 10), ResourceID: "gs1"}
	b, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"EXECUTING"`)

	var back BookingInfo
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, info.Status, back.Status)
	assert.True(t, back.Window.Start.Equal(info.Window.Start))
}
