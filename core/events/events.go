// Package events defines the events published by the scenario orchestrator.
package events

import (
	"time"

	"github.com/kilianp07/pvcompare/core/model"
)

// Row identifies one setup table row of a run.
type Row struct {
	RunID       string
	Label       string
	SurfaceType string
	Key         model.SeriesKey
	Mode        string
}

// RowComputed is published after a series was computed and stored.
type RowComputed struct {
	Row
	PeakW      float64
	CeilingKWp float64
	// AnnualYield is the sum of the stored series values.
	AnnualYield float64
	Duration    time.Duration
	Time        time.Time
}

// RowCached is published when an existing artifact was reused.
type RowCached struct {
	Row
	CeilingKWp  float64
	AnnualYield float64
	Time        time.Time
}

// RowFailed is published when a row aborted.
type RowFailed struct {
	Row
	Err  error
	Time time.Time
}

// Event is any of RowComputed, RowCached or RowFailed.
type Event interface{ row() Row }

func (e RowComputed) row() Row { return e.Row }
func (e RowCached) row() Row   { return e.Row }
func (e RowFailed) row() Row   { return e.Row }

// RowOf returns the row an event belongs to.
func RowOf(e Event) Row { return e.row() }
