package technology

import (
	"math"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/solar"
)

// Model computes the absolute power of one module of a technology.
type Model interface {
	Technology() model.Technology
	// Compute returns the power in W for every sample of weather.
	Compute(loc model.Location, weather model.WeatherSeries, o model.Orientation) ([]float64, error)
	// SubCells returns the electrically independent cells of the module.
	SubCells() []params.ModuleParameters
	// CellToModuleLoss is the fraction lost between summed cell power and
	// module output.
	CellToModuleLoss() float64
	// ModuleArea is the active module area in m2.
	ModuleArea() float64
	// Efficiency is the intended module efficiency in percent.
	Efficiency() float64
	// Thermal is the thermal model used to derive cell temperature.
	Thermal() solar.Thermal
}

// Conditions are the per-timestep physical inputs derived from weather and
// geometry.
type Conditions struct {
	Sun      solar.Position
	POA      solar.POA
	AirMass  float64 // absolute
	TempCell float64
}

// Evaluate derives plane-of-array irradiance, air mass and cell temperature
// for one sample.
func Evaluate(loc model.Location, s model.WeatherSample, o model.Orientation, th solar.Thermal) Conditions {
	sun := solar.SunPosition(s.Time, loc.Latitude, loc.Longitude)
	poa := solar.Transpose(o.Tilt, o.Azimuth, sun, s.DNI, s.GHI, s.DHI, solar.DefaultAlbedo)
	am := solar.AbsoluteAirMass(solar.RelativeAirMass(sun.Zenith), solar.AltitudeToPressure(loc.Altitude))
	return Conditions{
		Sun:      sun,
		POA:      poa,
		AirMass:  am,
		TempCell: th.CellTemperature(poa.Global, s.TempAir, s.WindSpeed),
	}
}

// cellPower returns the maximum power point of a cell for an effective
// irradiance ee expressed in suns and a cell temperature in degC.
func cellPower(p params.ModuleParameters, ee, tc float64) float64 {
	if ee <= 0 || math.IsNaN(ee) {
		return 0
	}
	dt := tc - 25
	imp := p.ImpRef * ee * (1 + p.AlphaImp*dt)
	vmp := p.VmpRef * (1 + p.BetaVmp*dt) * (1 + p.VoltageIrradiance*math.Log(ee))
	if imp <= 0 || vmp <= 0 {
		return 0
	}
	return imp * vmp
}

func thermalOf(p params.ModuleParameters) solar.Thermal {
	return solar.Thermal{A: p.ThermalA, B: p.ThermalB, DT: p.ThermalDT}
}
