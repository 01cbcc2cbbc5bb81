package config

import "github.com/kilianp07/groundsched/core/reservation"

// ReservationConfig holds commit settings. MissionProfileARN is used when a
// request does not carry its own profile.
type ReservationConfig struct {
	Actor             string `json:"actor"`
	MissionProfileARN string `json:"mission_profile_arn"`
}

func (c *ReservationConfig) SetDefaults() {
	if c.Actor == "" {
		c.Actor = reservation.DefaultActor
	}
}
