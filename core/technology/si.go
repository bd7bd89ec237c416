package technology

import (
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/solar"
)

// Silicon is the single-junction flat-plate model.
type Silicon struct {
	params params.ModuleParameters
}

// NewSilicon returns a Silicon model for the module parameters p.
func NewSilicon(p params.ModuleParameters) *Silicon { return &Silicon{params: p} }

func (m *Silicon) Technology() model.Technology        { return model.TechSi }
func (m *Silicon) SubCells() []params.ModuleParameters { return []params.ModuleParameters{m.params} }
func (m *Silicon) CellToModuleLoss() float64           { return 0 }
func (m *Silicon) ModuleArea() float64                 { return m.params.Area }
func (m *Silicon) Efficiency() float64                 { return m.params.Efficiency }
func (m *Silicon) Thermal() solar.Thermal              { return thermalOf(m.params) }

// Compute evaluates the Sandia-style electrical model at every timestep.
func (m *Silicon) Compute(loc model.Location, weather model.WeatherSeries, o model.Orientation) ([]float64, error) {
	out := make([]float64, weather.Len())
	th := m.Thermal()
	for i, s := range weather.Samples {
		c := Evaluate(loc, s, o, th)
		out[i] = m.power(c)
	}
	return out, nil
}

func (m *Silicon) power(c Conditions) float64 {
	f1 := solar.AirMassModifier(m.params.AirMass, c.AirMass)
	f2 := solar.IncidenceModifier(m.params.IAM, c.POA.AOI)
	ee := (c.POA.Direct*f2 + c.POA.Diffuse) * f1 / 1000
	return cellPower(m.params, ee, c.TempCell)
}
