package peakfinder

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/pvcompare/core/logger"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/solar"
	"github.com/kilianp07/pvcompare/core/technology"
)

// Target holds the reference operating point.
type Target struct {
	Irradiance float64 // plane-of-array W/m2
	TempCell   float64 // degC
}

// STC is the standard test condition target.
var STC = Target{Irradiance: 1000, TempCell: 25}

// DefaultTimeout bounds the reference read.
const DefaultTimeout = 30 * time.Second

// Candidate is one reference timestep with its derived conditions.
type Candidate struct {
	Index    int
	Time     time.Time
	POA      float64
	TempCell float64
}

// Finder implements the real-world peak search.
type Finder struct {
	source  ReferenceSource
	target  Target
	timeout time.Duration
	log     logger.Logger
}

// Option customizes a Finder.
type Option func(*Finder)

// WithTarget overrides the STC target.
func WithTarget(t Target) Option { return func(f *Finder) { f.target = t } }

// WithTimeout bounds the reference read; zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(f *Finder) { f.timeout = d } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(f *Finder) { f.log = logger.OrNop(l) } }

// New returns a Finder reading from source.
func New(source ReferenceSource, opts ...Option) *Finder {
	f := &Finder{source: source, target: STC, timeout: DefaultTimeout, log: logger.Nop{}}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Find returns the empirical peak power of m in W.
func (f *Finder) Find(ctx context.Context, m technology.Model, o model.Orientation) (float64, error) {
	if f.source == nil {
		return 0, fmt.Errorf("%w: no reference source", model.ErrReferenceDataUnavailable)
	}
	loadCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	ref, err := f.source.Load(loadCtx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrReferenceDataUnavailable, err)
	}
	cands := Candidates(ref, m.Thermal(), o)
	best, err := Select(cands, f.target)
	if err != nil {
		return 0, err
	}
	out, err := m.Compute(ref.Location, ref.Weather.Slice(best.Index, best.Index+1), o)
	if err != nil {
		return 0, fmt.Errorf("re-evaluate %s at %s: %w", m.Technology(), best.Time, err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("re-evaluate %s: expected 1 value, got %d", m.Technology(), len(out))
	}
	peakKW := out[0] / 1000
	f.log.Infof("real-world peak of %s (%s) at %s: poa=%.1f W/m2 tcell=%.1f degC peak=%.4f kW",
		m.Technology(), o, best.Time.Format(time.RFC3339), best.POA, best.TempCell, peakKW)
	return peakKW * 1000, nil
}

// Candidates evaluates plane-of-array irradiance and cell temperature for
// every reference timestep.
func Candidates(ref Reference, th solar.Thermal, o model.Orientation) []Candidate {
	out := make([]Candidate, len(ref.Weather.Samples))
	for i, s := range ref.Weather.Samples {
		c := technology.Evaluate(ref.Location, s, o, th)
		out[i] = Candidate{Index: i, Time: s.Time, POA: c.POA.Global, TempCell: c.TempCell}
	}
	return out
}

// Select applies the two-stage nearest-neighbour search. Irradiance ties in
// the first stage are ordered by cell temperature distance, so an exact
// target match is always shortlisted. Remaining ties go to the lowest index.
func Select(cands []Candidate, t Target) (Candidate, error) {
	if len(cands) == 0 {
		return Candidate{}, fmt.Errorf("%w: empty reference series", model.ErrReferenceDataUnavailable)
	}
	byIrr := append([]Candidate(nil), cands...)
	sort.SliceStable(byIrr, func(i, j int) bool {
		di := math.Abs(byIrr[i].POA - t.Irradiance)
		dj := math.Abs(byIrr[j].POA - t.Irradiance)
		if di != dj {
			return di < dj
		}
		ti := math.Abs(byIrr[i].TempCell - t.TempCell)
		tj := math.Abs(byIrr[j].TempCell - t.TempCell)
		if ti != tj {
			return ti < tj
		}
		return byIrr[i].Index < byIrr[j].Index
	})
	top := byIrr[:min(2, len(byIrr))]

	best := top[0]
	for _, c := range top[1:] {
		dc := math.Abs(c.TempCell - t.TempCell)
		db := math.Abs(best.TempCell - t.TempCell)
		if dc < db || (dc == db && c.Index < best.Index) {
			best = c
		}
	}
	return best, nil
}
