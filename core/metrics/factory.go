package metrics

import (
	"fmt"

	"github.com/kilianp07/groundsched/core/factory"
)

// Sink types are registered by infra/metrics: nop, prometheus, influx,
// cloudwatch and mqtt.
var sinkRegistry = factory.NewRegistry[MetricsSink]("metrics sink")

// RegisterMetricsSink makes a sink type selectable from metrics.sinks.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds the sinks listed under metrics.sinks. An empty list
// disables reporting with a NopSink and a single entry is returned as is;
// otherwise every counter fans out through a MultiSink in list order. If an
// entry fails, the sinks built before it are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinkRegistry.Create(cfgs[0])
	}
	built := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			for _, b := range built {
				_ = CloseSink(b)
			}
			return nil, fmt.Errorf("metrics.sinks[%d]: %w", i, err)
		}
		built = append(built, s)
	}
	return NewMultiSink(built...), nil
}

// SinkTypes lists the registered sink type names.
func SinkTypes() []string { return sinkRegistry.Names() }
