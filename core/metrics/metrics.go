package metrics

import (
	"time"

	"github.com/kilianp07/pvcompare/core/model"
)

// Outcome classifies how a scenario row finished.
type Outcome string

const (
	OutcomeComputed Outcome = "computed"
	OutcomeCacheHit Outcome = "cache_hit"
	OutcomeFailed   Outcome = "failed"
)

// RowEvent describes one evaluated setup row.
type RowEvent struct {
	RunID       string
	Label       string
	SurfaceType string
	Key         model.SeriesKey
	Outcome     Outcome
	Mode        string
	PeakW       float64
	CeilingKWp  float64
	// AnnualYield is the sum of the normalized series (kWh/kWp for hourly data).
	AnnualYield float64
	Duration    time.Duration
	Error       string
	Time        time.Time
}

// MisuseEvent reports a yield series normalized with a sizing-only peak.
type MisuseEvent struct {
	Technology model.Technology
	Mode       string
	Time       time.Time
}

// Sink records scenario events for observability purposes.
type Sink interface {
	RecordRow(ev RowEvent) error
}

// MisuseRecorder records normalization misuse warnings.
type MisuseRecorder interface {
	RecordMisuse(ev MisuseEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRow(RowEvent) error       { return nil }
func (NopSink) RecordMisuse(MisuseEvent) error { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{Sinks: sinks} }

// RecordRow forwards to every sink and returns the first error encountered.
// All sinks are called even when one fails.
func (m *MultiSink) RecordRow(ev RowEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordRow(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordMisuse forwards to the sinks that support it.
func (m *MultiSink) RecordMisuse(ev MisuseEvent) error {
	var first error
	for _, s := range m.Sinks {
		if r, ok := s.(MisuseRecorder); ok {
			if err := r.RecordMisuse(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
