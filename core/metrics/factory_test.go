package metrics_test

import (
	"strings"
	"testing"

	"github.com/kilianp07/groundsched/core/factory"
	metrics "github.com/kilianp07/groundsched/core/metrics"
	_ "github.com/kilianp07/groundsched/infra/metrics"
)

/*
TestMetricsFactory_Builtins verifies registration via infra/metrics/factory.go.

	Cases:
	- instantiate builtin nop sink
	- unknown type returns error
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
	types := metrics.SinkTypes()
	for _, want := range []string{"nop", "prometheus", "influx", "cloudwatch", "mqtt"} {
		found := false
		for _, got := range types {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("sink type %q not registered (have %v)", want, types)
		}
	}
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - two configs -> MultiSink with two sub-sinks
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}
	s, err = metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
}

var trackerClosed int

type closeTracker struct{}

func (closeTracker) RecordCounter(metrics.CounterEvent) error { return nil }
func (closeTracker) Close() error {
	trackerClosed++
	return nil
}

func init() {
	_ = metrics.RegisterMetricsSink("close-tracker", func(map[string]any) (metrics.MetricsSink, error) {
		return closeTracker{}, nil
	})
}

/*
TestNewMetricsSink_PartialFailure checks that sinks built before a failing
entry are closed and the failing index is reported.
*/
func TestNewMetricsSink_PartialFailure(t *testing.T) {
	trackerClosed = 0
	cfgs := []factory.ModuleConfig{{Type: "close-tracker"}, {Type: "close-tracker"}, {Type: "missing"}}
	_, err := metrics.NewMetricsSink(cfgs)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "metrics.sinks[2]") {
		t.Errorf("error %q does not name the failing entry", err)
	}
	if trackerClosed != 2 {
		t.Errorf("expected 2 sinks closed, got %d", trackerClosed)
	}
}
