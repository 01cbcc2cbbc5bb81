package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/core/model"
	"github.com/kilianp07/groundsched/core/reservation"
	"github.com/kilianp07/groundsched/core/search"
)

// WindowRequest is the body of POST /v1/windows and POST /v1/contacts.
// Horizon and Step use Go duration syntax ("24h", "15m").
type WindowRequest struct {
	SatelliteARN      string `json:"satellite_arn"`
	StartTime         string `json:"start_time"`
	DurationSeconds   int64  `json:"duration_seconds"`
	Horizon           string `json:"horizon,omitempty"`
	Step              string `json:"step,omitempty"`
	MissionProfileARN string `json:"mission_profile_arn,omitempty"`
	DryRun            bool   `json:"dry_run,omitempty"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ErrorResponse carries a failure back to the client.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleFindWindow(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeWindowRequest(w, r)
	if !ok {
		return
	}
	cand, err := s.scheduler.FindWindow(r.Context(), req.Search)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cand)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeWindowRequest(w, r)
	if !ok {
		return
	}
	res, err := s.scheduler.Schedule(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	status := http.StatusCreated
	if res.DryRun {
		status = http.StatusOK
	}
	s.writeJSON(w, status, res)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, ok := s.status.GetStatus(r.Context(), id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("contact %s not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// handleStationContacts lists bookings on one station. Query parameters:
// from and to (ISO-8601, default now and now+24h) and status (comma
// separated names, default all).
func (s *Server) handleStationContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now().UTC()
	rng := model.TimeWindow{Start: now, End: now.Add(model.DefaultHorizon)}
	for name, dst := range map[string]*time.Time{"from": &rng.Start, "to": &rng.End} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := model.ParseTime(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "malformed", fmt.Sprintf("invalid %s: %v", name, err))
			return
		}
		*dst = t
	}
	if !rng.End.After(rng.Start) {
		s.writeError(w, http.StatusBadRequest, "malformed", "to must be after from")
		return
	}
	var statuses []model.BookingStatus
	if v := q.Get("status"); v != "" {
		for _, name := range strings.Split(v, ",") {
			st := model.ParseBookingStatus(strings.TrimSpace(name))
			if st == model.StatusUnknown {
				s.writeError(w, http.StatusBadRequest, "malformed", fmt.Sprintf("unknown status %q", name))
				return
			}
			statuses = append(statuses, st)
		}
	}
	bookings, err := s.scheduler.Contacts(r.Context(), chi.URLParam(r, "id"), rng, statuses)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	s.writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) decodeWindowRequest(w http.ResponseWriter, r *http.Request) (app.ScheduleRequest, bool) {
	var body WindowRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed", fmt.Sprintf("invalid JSON body: %v", err))
		return app.ScheduleRequest{}, false
	}
	req, err := body.toScheduleRequest()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed", err.Error())
		return app.ScheduleRequest{}, false
	}
	return req, true
}

func (b WindowRequest) toScheduleRequest() (app.ScheduleRequest, error) {
	if b.SatelliteARN == "" {
		return app.ScheduleRequest{}, fmt.Errorf("satellite_arn is required")
	}
	start, err := model.ParseTime(b.StartTime)
	if err != nil {
		return app.ScheduleRequest{}, fmt.Errorf("invalid start_time: %w", err)
	}
	req := model.SearchRequest{
		Target:         b.SatelliteARN,
		PreferredStart: start,
		Duration:       time.Duration(b.DurationSeconds) * time.Second,
	}
	if b.Horizon != "" {
		if req.Horizon, err = time.ParseDuration(b.Horizon); err != nil {
			return app.ScheduleRequest{}, fmt.Errorf("invalid horizon: %w", err)
		}
	}
	if b.Step != "" {
		if req.Step, err = time.ParseDuration(b.Step); err != nil {
			return app.ScheduleRequest{}, fmt.Errorf("invalid step: %w", err)
		}
	}
	return app.ScheduleRequest{Search: req, MissionProfile: b.MissionProfileARN, DryRun: b.DryRun}, nil
}

// writeFailure maps service errors to status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	if ce, ok := reservation.AsCommitError(err); ok {
		if ce.Rejected {
			s.writeError(w, http.StatusConflict, "rejected", err.Error())
		} else {
			s.writeError(w, http.StatusBadGateway, "commit_failed", err.Error())
		}
		return
	}
	switch {
	case errors.Is(err, model.ErrMalformedRequest):
		s.writeError(w, http.StatusBadRequest, "malformed", err.Error())
	case errors.Is(err, search.ErrInfeasible):
		s.writeError(w, http.StatusUnprocessableEntity, "infeasible", err.Error())
	case errors.Is(err, search.ErrSearchAborted):
		s.writeError(w, http.StatusGatewayTimeout, "aborted", err.Error())
	default:
		s.log.Errorf("request failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "upstream", err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
