package technology

import (
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/solar"
)

// SpectralSplitter distributes plane-of-array irradiance between the top and
// bottom cells of a tandem. Results are effective irradiances in suns.
type SpectralSplitter interface {
	Split(p params.TandemParameters, poa solar.POA, airMass, precipitableWater float64) (top, bottom float64)
}

// FirstSolarSplitter weights each sub-cell with its own precipitable water
// and air mass spectral correction.
type FirstSolarSplitter struct{}

func (FirstSolarSplitter) Split(p params.TandemParameters, poa solar.POA, am, pw float64) (float64, float64) {
	cell := func(c params.ModuleParameters) float64 {
		e := poa.Direct*solar.IncidenceModifier(c.IAM, poa.AOI) + poa.Diffuse
		return e * solar.SpectralModifier(c.Spectral, am, pw) / 1000
	}
	return cell(p.Top), cell(p.Bottom)
}

// Tandem is the perovskite-silicon model.
type Tandem struct {
	params   params.TandemParameters
	splitter SpectralSplitter
}

// NewTandem returns the psi model for one calibration. A nil splitter
// defaults to FirstSolarSplitter.
func NewTandem(p params.TandemParameters, splitter SpectralSplitter) *Tandem {
	if splitter == nil {
		splitter = FirstSolarSplitter{}
	}
	return &Tandem{params: p, splitter: splitter}
}

func (m *Tandem) Technology() model.Technology { return model.TechPSI }
func (m *Tandem) SubCells() []params.ModuleParameters {
	return []params.ModuleParameters{m.params.Top, m.params.Bottom}
}
func (m *Tandem) CellToModuleLoss() float64 { return m.params.CellToModuleLoss }
func (m *Tandem) ModuleArea() float64       { return m.params.Area }
func (m *Tandem) Efficiency() float64       { return m.params.Efficiency }
func (m *Tandem) Thermal() solar.Thermal    { return thermalOf(m.params.Bottom) }

// PSIType returns the calibration this model was built with.
func (m *Tandem) PSIType() params.PSIType { return m.params.Type }

// Compute requires precipitable water in the weather series.
func (m *Tandem) Compute(loc model.Location, weather model.WeatherSeries, o model.Orientation) ([]float64, error) {
	if !weather.HasPrecipitableWater {
		return nil, &model.MissingColumnError{Table: "weather", Column: "precipitable_water"}
	}
	out := make([]float64, weather.Len())
	th := m.Thermal()
	keep := 1 - m.params.CellToModuleLoss
	for i, s := range weather.Samples {
		c := Evaluate(loc, s, o, th)
		top, bottom := m.splitter.Split(m.params, c.POA, c.AirMass, s.PrecipitableWater)
		p := cellPower(m.params.Top, top, c.TempCell) + cellPower(m.params.Bottom, bottom, c.TempCell)
		out[i] = p * keep
	}
	return out, nil
}
