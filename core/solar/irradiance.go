package solar

import "math"

// DefaultAlbedo is the ground reflectance used for transposition.
const DefaultAlbedo = 0.25

// POA is the plane-of-array irradiance split into its components [W/m2].
type POA struct {
	Global  float64
	Direct  float64
	Sky     float64
	Ground  float64
	AOI     float64
	Zenith  float64
	SunUp   bool
	Diffuse float64
}

// Transpose projects horizontal irradiance onto a tilted plane using the
// isotropic sky model.
func Transpose(tilt, azimuth float64, sun Position, dni, ghi, dhi, albedo float64) POA {
	aoi := AngleOfIncidence(tilt, azimuth, sun)
	out := POA{AOI: aoi, Zenith: sun.Zenith, SunUp: sun.Up()}
	if out.SunUp {
		out.Direct = math.Max(dni*math.Cos(aoi*deg2rad), 0)
	}
	ct := math.Cos(tilt * deg2rad)
	out.Sky = math.Max(dhi*(1+ct)/2, 0)
	out.Ground = math.Max(ghi*albedo*(1-ct)/2, 0)
	out.Diffuse = out.Sky + out.Ground
	out.Global = out.Direct + out.Diffuse
	return out
}

// RelativeAirMass returns the Kasten-Young (1989) relative air mass for the
// apparent zenith in degrees, or NaN when the sun is below the horizon.
func RelativeAirMass(zenith float64) float64 {
	if zenith >= 90 {
		return math.NaN()
	}
	return 1 / (math.Cos(zenith*deg2rad) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
}

// AltitudeToPressure converts altitude in meters to pressure in Pa.
func AltitudeToPressure(altitude float64) float64 {
	return 100 * math.Pow((44331.514-altitude)/11880.516, 1/0.1902632)
}

// AbsoluteAirMass corrects a relative air mass for site pressure in Pa.
func AbsoluteAirMass(relative, pressure float64) float64 {
	return relative * pressure / 101325
}

// AirMassModifier evaluates the A0..A4 polynomial in absolute air mass.
// Returns 0 for NaN air mass and never a negative value.
func AirMassModifier(coeffs [5]float64, amAbs float64) float64 {
	if math.IsNaN(amAbs) {
		return 0
	}
	if coeffs == [5]float64{} {
		return 1
	}
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*amAbs + coeffs[i]
	}
	return math.Max(v, 0)
}

// IncidenceModifier is the ASHRAE angle of incidence loss 1 - b0(1/cos - 1).
func IncidenceModifier(b0, aoi float64) float64 {
	if aoi >= 90 {
		return 0
	}
	if b0 == 0 {
		return 1
	}
	return math.Max(1-b0*(1/math.Cos(aoi*deg2rad)-1), 0)
}

// SpectralModifier is the first-solar style correction driven by absolute
// air mass and precipitable water in cm. Zero coefficients disable it.
func SpectralModifier(c [6]float64, amAbs, pw float64) float64 {
	if c == [6]float64{} {
		return 1
	}
	if math.IsNaN(amAbs) {
		return 0
	}
	pw = math.Min(math.Max(pw, 0.1), 8)
	amAbs = math.Min(amAbs, 10)
	m := c[0] + c[1]*amAbs + c[2]*pw + c[3]*math.Sqrt(amAbs) + c[4]*math.Sqrt(pw) + c[5]*amAbs/math.Sqrt(pw)
	return math.Max(m, 0)
}
