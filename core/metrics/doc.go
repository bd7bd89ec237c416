// Package metrics defines the sinks that record scenario evaluation events.
// Implementations live in infra/metrics (Prometheus, InfluxDB) and register
// themselves by name; NewSink builds one sink, or a MultiSink when several
// are configured.
package metrics
