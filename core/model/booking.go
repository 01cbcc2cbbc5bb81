package model

import "strings"

// Resource is a schedulable antenna known to the authority.
type Resource struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Locality string `json:"locality" yaml:"locality"`
}

// BookingStatus is the lifecycle state of a booking held by the authority.
type BookingStatus int

const (
	StatusUnknown BookingStatus = iota
	StatusAvailable
	StatusScheduling
	StatusScheduled
	StatusExecuting
	StatusPrepass
	StatusPass
	StatusPostpass
	StatusCompleted
	StatusFailed
	StatusFailedToSchedule
	StatusCancelling
	StatusCancelled
	StatusAWSCancelled
	StatusAWSFailed
)

var statusNames = map[BookingStatus]string{
	StatusAvailable:        "AVAILABLE",
	StatusScheduling:       "SCHEDULING",
	StatusScheduled:        "SCHEDULED",
	StatusExecuting:        "EXECUTING",
	StatusPrepass:          "PREPASS",
	StatusPass:             "PASS",
	StatusPostpass:         "POSTPASS",
	StatusCompleted:        "COMPLETED",
	StatusFailed:           "FAILED",
	StatusFailedToSchedule: "FAILED_TO_SCHEDULE",
	StatusCancelling:       "CANCELLING",
	StatusCancelled:        "CANCELLED",
	StatusAWSCancelled:     "AWS_CANCELLED",
	StatusAWSFailed:        "AWS_FAILED",
}

// String returns the authority wire name of the status.
func (s BookingStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// MarshalText encodes the status using its wire name.
func (s BookingStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a wire name; unrecognised names become StatusUnknown.
func (s *BookingStatus) UnmarshalText(b []byte) error {
	*s = ParseBookingStatus(string(b))
	return nil
}

// ParseBookingStatus maps a wire name (case-insensitive) to a BookingStatus.
func ParseBookingStatus(name string) BookingStatus {
	name = strings.ToUpper(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == name {
			return s
		}
	}
	return StatusUnknown
}

// IsLive reports whether a booking in this state still occupies its antenna.
// A contact is executing from PREPASS through POSTPASS; StatusExecuting is the
// generic form used by local authorities. Terminal, failed and cancelled
// bookings never conflict.
func (s BookingStatus) IsLive() bool {
	switch s {
	case StatusScheduled, StatusExecuting, StatusPrepass, StatusPass, StatusPostpass:
		return true
	}
	return false
}

// LiveStatuses returns the statuses used to filter conflict queries.
func LiveStatuses() []BookingStatus {
	return []BookingStatus{StatusScheduled, StatusExecuting, StatusPrepass, StatusPass, StatusPostpass}
}

// Booking is a reservation recorded by the authority.
type Booking struct {
	ID         string        `json:"id" yaml:"id"`
	Window     TimeWindow    `json:"window" yaml:"window"`
	ResourceID string        `json:"resource_id" yaml:"resource_id"`
	Status     BookingStatus `json:"status" yaml:"status"`
}

// BookingInfo is the status view of a previously committed booking.
type BookingInfo struct {
	ID         string        `json:"id" yaml:"id"`
	Status     BookingStatus `json:"status" yaml:"status"`
	Window     TimeWindow    `json:"window" yaml:"window"`
	ResourceID string        `json:"resource_id" yaml:"resource_id"`
}
