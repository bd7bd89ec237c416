package solar

import (
	"math"
	"time"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Position is the apparent sun position in degrees.
type Position struct {
	Zenith  float64
	Azimuth float64
}

// Elevation returns 90 - zenith.
func (p Position) Elevation() float64 { return 90 - p.Zenith }

// Up reports whether the sun is above the horizon.
func (p Position) Up() bool { return p.Zenith < 90 }

func clampUnit(x float64) float64 { return math.Max(-1, math.Min(1, x)) }

func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// SunPosition computes the sun position for t at the given coordinates using
// the NOAA general solar position equations. Accuracy is within a fraction of
// a degree, ample for hourly yield modelling.
func SunPosition(t time.Time, latitude, longitude float64) Position {
	u := t.UTC()
	jd := float64(u.UnixNano())/float64(24*time.Hour) + 2440587.5
	jc := (jd - 2451545) / 36525

	l0 := mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	m := 357.52911 + jc*(35999.05029-0.0001537*jc)
	e := 0.016708634 - jc*(0.000042037+0.0000001267*jc)
	mr := m * deg2rad
	c := math.Sin(mr)*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(2*mr)*(0.019993-0.000101*jc) +
		math.Sin(3*mr)*0.000289
	omega := (125.04 - 1934.136*jc) * deg2rad
	appLong := (l0 + c - 0.00569 - 0.00478*math.Sin(omega)) * deg2rad
	meanObliq := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliq := (meanObliq + 0.00256*math.Cos(omega)) * deg2rad
	decl := math.Asin(math.Sin(obliq) * math.Sin(appLong))

	y := math.Pow(math.Tan(obliq/2), 2)
	l0r := l0 * deg2rad
	eqTime := 4 * rad2deg * (y*math.Sin(2*l0r) - 2*e*math.Sin(mr) +
		4*e*y*math.Sin(mr)*math.Cos(2*l0r) -
		0.5*y*y*math.Sin(4*l0r) - 1.25*e*e*math.Sin(2*mr))

	minutes := float64(u.Hour()*60+u.Minute()) + float64(u.Second())/60
	tst := mod(minutes+eqTime+4*longitude, 1440)
	ha := tst/4 - 180
	if tst/4 < 0 {
		ha = tst/4 + 180
	}

	lat := latitude * deg2rad
	har := ha * deg2rad
	cosZen := clampUnit(math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(har))
	zen := math.Acos(cosZen)

	var az float64
	den := math.Cos(lat) * math.Sin(zen)
	if math.Abs(den) < 1e-12 {
		az = 180
	} else {
		a := math.Acos(clampUnit((math.Sin(lat)*math.Cos(zen)-math.Sin(decl))/den)) * rad2deg
		if ha > 0 {
			az = mod(a+180, 360)
		} else {
			az = mod(540-a, 360)
		}
	}
	return Position{Zenith: zen * rad2deg, Azimuth: az}
}

// AngleOfIncidence returns the angle in degrees between the sun beam and the
// normal of a surface with the given tilt and azimuth.
func AngleOfIncidence(tilt, azimuth float64, sun Position) float64 {
	t := tilt * deg2rad
	z := sun.Zenith * deg2rad
	proj := math.Cos(t)*math.Cos(z) +
		math.Sin(t)*math.Sin(z)*math.Cos((sun.Azimuth-azimuth)*deg2rad)
	return math.Acos(clampUnit(proj)) * rad2deg
}
