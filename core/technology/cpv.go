package technology

import (
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/solar"
)

// HybridCombiner merges the concentrator and flat sub-system powers into one
// series. Both inputs have the same length.
type HybridCombiner interface {
	Combine(concentrator, flat []float64) []float64
}

// SumCombiner adds both sub-systems sample by sample.
type SumCombiner struct{}

func (SumCombiner) Combine(concentrator, flat []float64) []float64 {
	out := make([]float64, len(concentrator))
	for i := range concentrator {
		out[i] = concentrator[i] + flat[i]
	}
	return out
}

// Hybrid is the micro-tracking concentrator with a flat-plate companion cell.
type Hybrid struct {
	params   params.CPVParameters
	combiner HybridCombiner
}

// NewHybrid returns the cpv model. A nil combiner defaults to SumCombiner.
func NewHybrid(p params.CPVParameters, combiner HybridCombiner) *Hybrid {
	if combiner == nil {
		combiner = SumCombiner{}
	}
	return &Hybrid{params: p, combiner: combiner}
}

func (m *Hybrid) Technology() model.Technology { return model.TechCPV }
func (m *Hybrid) SubCells() []params.ModuleParameters {
	return []params.ModuleParameters{m.params.Concentrator, m.params.Flat}
}
func (m *Hybrid) CellToModuleLoss() float64 { return 0 }
func (m *Hybrid) ModuleArea() float64       { return m.params.Area }
func (m *Hybrid) Efficiency() float64       { return m.params.Efficiency }
func (m *Hybrid) Thermal() solar.Thermal    { return thermalOf(m.params.Concentrator) }

// Compute models both sub-systems independently and hands them to the
// combiner.
func (m *Hybrid) Compute(loc model.Location, weather model.WeatherSeries, o model.Orientation) ([]float64, error) {
	conc := make([]float64, weather.Len())
	flat := make([]float64, weather.Len())
	cth := thermalOf(m.params.Concentrator)
	fth := thermalOf(m.params.Flat)
	for i, s := range weather.Samples {
		c := Evaluate(loc, s, o, cth)
		beamConc, beamFlat := m.splitBeam(c.POA)
		fc := solar.AirMassModifier(m.params.Concentrator.AirMass, c.AirMass)
		conc[i] = cellPower(m.params.Concentrator, beamConc*fc/1000, c.TempCell)

		ff := solar.AirMassModifier(m.params.Flat.AirMass, c.AirMass)
		ft := fth.CellTemperature(c.POA.Global, s.TempAir, s.WindSpeed)
		flat[i] = cellPower(m.params.Flat, (beamFlat+c.POA.Diffuse)*ff/1000, ft)
	}
	return m.combiner.Combine(conc, flat), nil
}

// splitBeam returns the beam irradiance reaching the concentrator cells and
// the share that spills onto the flat cell.
func (m *Hybrid) splitBeam(poa solar.POA) (conc, flat float64) {
	if poa.AOI > m.params.AcceptanceAngle {
		return 0, poa.Direct * solar.IncidenceModifier(m.params.Flat.IAM, poa.AOI)
	}
	conc = poa.Direct * m.params.OpticalEfficiency
	return conc, poa.Direct - conc
}
