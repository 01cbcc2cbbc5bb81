// Package plugins links the built-in authority and metrics backends into
// the binary. Importing it for side effects makes every backend available
// to authority.New and metrics.NewMetricsSink.
package plugins

import (
	"github.com/kilianp07/groundsched/core/authority"
	coremetrics "github.com/kilianp07/groundsched/core/metrics"

	_ "github.com/kilianp07/groundsched/infra/groundstation"
	_ "github.com/kilianp07/groundsched/infra/metrics"
	_ "github.com/kilianp07/groundsched/infra/store"
)

// Backends lists the registered backend names per kind.
type Backends struct {
	Authorities []string `json:"authorities" yaml:"authorities"`
	Metrics     []string `json:"metrics" yaml:"metrics"`
}

// Available returns what can be selected in configuration.
func Available() Backends {
	return Backends{Authorities: authority.Types(), Metrics: coremetrics.SinkTypes()}
}
