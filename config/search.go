package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/groundsched/core/conflict"
	"github.com/kilianp07/groundsched/core/model"
)

// SearchConfig tunes the window search.
type SearchConfig struct {
	Horizon time.Duration `json:"horizon"`
	Step    time.Duration `json:"step"`
	// Guard pads each conflict query on both sides.
	Guard       time.Duration `json:"guard"`
	Parallelism int           `json:"parallelism"`
	// Timeout bounds one search. Zero means no bound.
	Timeout time.Duration `json:"timeout"`
}

func (c *SearchConfig) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = model.DefaultHorizon
	}
	if c.Step == 0 {
		c.Step = model.DefaultStep
	}
	if c.Guard == 0 {
		c.Guard = conflict.DefaultGuard
	}
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
}

func (c SearchConfig) Validate() error {
	switch {
	case c.Horizon <= 0:
		return fmt.Errorf("horizon must be positive")
	case c.Step <= 0:
		return fmt.Errorf("step must be positive")
	case c.Guard < 0:
		return fmt.Errorf("guard must not be negative")
	case c.Parallelism < 1:
		return fmt.Errorf("parallelism must be at least 1")
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
