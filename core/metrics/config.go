package metrics

import "github.com/kilianp07/groundsched/core/factory"

// Config defines the metric namespace and the configured sinks.
type Config struct {
	Namespace string                 `json:"namespace"`
	Sinks     []factory.ModuleConfig `json:"sinks"`
}

// SetDefaults applies the default namespace.
func (c *Config) SetDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
}
