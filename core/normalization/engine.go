package normalization

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pvcompare/core/logger"
	"github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/technology"
)

// stcIrradianceScale is 1000 W/m2 divided by 100 to account for the
// efficiency being expressed in percent.
const stcIrradianceScale = 10

// PeakFinder locates the empirical peak of a model under real-world
// conditions.
type PeakFinder interface {
	Find(ctx context.Context, m technology.Model, o model.Orientation) (float64, error)
}

// Engine computes peaks and normalizes absolute series.
type Engine struct {
	finder PeakFinder
	log    logger.Logger
	sink   metrics.Sink
}

// NewEngine returns an Engine. finder may be nil when real-world
// normalization is never requested; nil log and sink discard output.
func NewEngine(finder PeakFinder, log logger.Logger, sink metrics.Sink) *Engine {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{finder: finder, log: logger.OrNop(log), sink: sink}
}

// ReferencePeak is the summed STC power of all sub-cells minus the
// cell-to-module loss.
func ReferencePeak(m technology.Model) float64 {
	cells := m.SubCells()
	p := make([]float64, len(cells))
	for i, c := range cells {
		p[i] = c.PeakSTC()
	}
	return floats.Sum(p) * (1 - m.CellToModuleLoss())
}

// IntendedEfficiencyPeak is area x efficiency x 1000 W/m2.
func IntendedEfficiencyPeak(m technology.Model) float64 {
	return m.ModuleArea() * m.Efficiency() * stcIrradianceScale
}

// Peak returns the peak power in W for mode. ModeNone has no peak and
// returns 0.
func (e *Engine) Peak(ctx context.Context, m technology.Model, mode Mode, o model.Orientation) (float64, error) {
	switch mode {
	case ModeReferenceConditions:
		return ReferencePeak(m), nil
	case ModeIntendedEfficiency:
		return IntendedEfficiencyPeak(m), nil
	case ModeRealWorldConditions:
		if e.finder == nil {
			return 0, fmt.Errorf("%w: no real-world peak finder configured", model.ErrReferenceDataUnavailable)
		}
		return e.finder.Find(ctx, m, o)
	case ModeNone:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: mode %q", model.ErrUnsupportedNormalization, mode)
	}
}

// SizingPeak returns the per-module peak in W used for capacity ceilings.
func (e *Engine) SizingPeak(m technology.Model, s SizingStrategy) (float64, error) {
	switch s {
	case SizingIntendedEfficiency:
		return IntendedEfficiencyPeak(m), nil
	case SizingReferenceConditions:
		return ReferencePeak(m), nil
	default:
		return 0, fmt.Errorf("%w: sizing strategy %q", model.ErrUnsupportedNormalization, s)
	}
}

// Result is a normalized series with the peak that produced it.
type Result struct {
	Values []float64
	Unit   model.Unit
	PeakW  float64
}

// Normalize converts an absolute series in W into a specific yield series
// (kW/kWp) for mode, or into kW for ModeNone. Values are clipped at zero.
func (e *Engine) Normalize(ctx context.Context, m technology.Model, mode Mode, o model.Orientation, raw []float64) (Result, error) {
	if mode == ModeIntendedEfficiency {
		e.log.Warnw("intended efficiency peak used to normalize a yield series; it is only meaningful for capacity sizing", map[string]any{
			"technology": m.Technology().String(),
			"mode":       mode.String(),
		})
		if r, ok := e.sink.(metrics.MisuseRecorder); ok {
			if err := r.RecordMisuse(metrics.MisuseEvent{Technology: m.Technology(), Mode: mode.String(), Time: time.Now()}); err != nil {
				e.log.Errorf("record misuse: %v", err)
			}
		}
	}
	peak, err := e.Peak(ctx, m, mode, o)
	if err != nil {
		return Result{}, err
	}
	if mode == ModeNone {
		return Result{Values: Divide(raw, 1000), Unit: model.UnitKilowatt}, nil
	}
	if peak <= 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return Result{}, fmt.Errorf("%w: peak %v for %s/%s", model.ErrInvalidInput, peak, m.Technology(), mode)
	}
	e.log.Debugw("normalizing series", map[string]any{
		"technology": m.Technology().String(),
		"mode":       mode.String(),
		"peak_w":     peak,
	})
	return Result{Values: Divide(raw, peak), Unit: model.UnitSpecific, PeakW: peak}, nil
}

// Divide returns raw/peak with negative and NaN results clipped to zero.
func Divide(raw []float64, peak float64) []float64 {
	out := make([]float64, len(raw))
	floats.ScaleTo(out, 1/peak, raw)
	for i, v := range out {
		if v < 0 || math.IsNaN(v) {
			out[i] = 0
		}
	}
	return out
}
