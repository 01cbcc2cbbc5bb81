// Package metrics defines the sinks that receive scheduling counters and
// search summaries. Sinks such as PromSink, InfluxSink and CloudWatchSink
// live in infra/metrics and register themselves by type name; NewMetricsSink
// builds one (or a MultiSink) from configuration. Emitter hands events to
// the sink asynchronously so recording never blocks or fails a reservation.
package metrics
