package metrics

import "github.com/kilianp07/pvcompare/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the /metrics endpoint when non-empty.
	PrometheusAddr string `json:"prometheus_addr"`
}
