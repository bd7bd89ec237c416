package solar

import "math"

// Thermal holds the Sandia module temperature coefficients.
type Thermal struct {
	A  float64
	B  float64
	DT float64
}

// CellTemperature returns the cell temperature in degC for the given POA
// irradiance, ambient temperature and wind speed.
func (th Thermal) CellTemperature(poa, tempAir, windSpeed float64) float64 {
	module := poa*math.Exp(th.A+th.B*windSpeed) + tempAir
	return module + poa/1000*th.DT
}
