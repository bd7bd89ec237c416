package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pvcompare/core/metrics"
)

// PromSink records scenario rows in Prometheus metrics.
type PromSink struct {
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	ceiling  *prometheus.GaugeVec
	yield    *prometheus.GaugeVec
	misuse   *prometheus.CounterVec
}

// NewPromSink registers scenario metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rows, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pvcompare_rows_total",
		Help: "Setup rows evaluated, by technology, surface and outcome",
	}, []string{"technology", "surface_type", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pvcompare_row_duration_seconds",
		Help:    "Time spent computing and normalizing a yield series",
		Buckets: prometheus.DefBuckets,
	}, []string{"technology"}))
	if err != nil {
		return nil, err
	}
	ceiling, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvcompare_ceiling_kwp",
		Help: "Installable capacity ceiling of the last evaluated plant",
	}, []string{"label", "technology"}))
	if err != nil {
		return nil, err
	}
	yield, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pvcompare_annual_yield",
		Help: "Sum of the yield series of the last evaluated plant",
	}, []string{"label", "technology"}))
	if err != nil {
		return nil, err
	}
	misuse, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pvcompare_normalization_misuse_total",
		Help: "Yield series normalized with the intended efficiency peak",
	}, []string{"technology"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{rows: rows, duration: duration, ceiling: ceiling, yield: yield, misuse: misuse}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordRow updates the counters and gauges for one row.
func (s *PromSink) RecordRow(ev coremetrics.RowEvent) error {
	tech := ev.Key.Technology.String()
	s.rows.WithLabelValues(tech, ev.SurfaceType, string(ev.Outcome)).Inc()
	if ev.Outcome == coremetrics.OutcomeFailed {
		return nil
	}
	if ev.Outcome == coremetrics.OutcomeComputed {
		s.duration.WithLabelValues(tech).Observe(ev.Duration.Seconds())
	}
	s.ceiling.WithLabelValues(ev.Label, tech).Set(ev.CeilingKWp)
	s.yield.WithLabelValues(ev.Label, tech).Set(ev.AnnualYield)
	return nil
}

// RecordMisuse counts intended efficiency normalizations.
func (s *PromSink) RecordMisuse(ev coremetrics.MisuseEvent) error {
	s.misuse.WithLabelValues(ev.Technology.String()).Inc()
	return nil
}
