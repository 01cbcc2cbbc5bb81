package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/groundsched/core/factory"
	coremetrics "github.com/kilianp07/groundsched/core/metrics"
	"github.com/kilianp07/groundsched/infra/logger"
	"github.com/kilianp07/groundsched/infra/mqtt"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket, logger.New("influx-sink")), nil
	})

	_ = coremetrics.RegisterMetricsSink("cloudwatch", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c CloudWatchConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCloudWatchSink(context.Background(), c)
	})

	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c mqtt.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		cli, err := mqtt.NewPahoClient(c, logger.New("mqtt-sink"))
		if err != nil {
			return nil, err
		}
		return mqtt.NewEventSink(cli, c.TopicPrefix), nil
	})
}
