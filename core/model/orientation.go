package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OptimalTiltLabel is the setup table sentinel for a latitude-derived tilt.
const OptimalTiltLabel = "optimal"

// Location is a geographic site.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Validate checks that the coordinates are finite and in range.
func (l Location) Validate() error {
	if !(l.Latitude >= -90 && l.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v", ErrInvalidInput, l.Latitude)
	}
	if !(l.Longitude >= -180 && l.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v", ErrInvalidInput, l.Longitude)
	}
	if math.IsNaN(l.Altitude) {
		return fmt.Errorf("%w: altitude is NaN", ErrInvalidInput)
	}
	return nil
}

// Orientation is the azimuth and tilt of a PV asset in degrees.
// Azimuth follows the convention 180 = south, tilt 0 = horizontal.
type Orientation struct {
	Azimuth float64 `json:"azimuth"`
	Tilt    float64 `json:"tilt"`
}

func (o Orientation) String() string {
	return fmt.Sprintf("az=%g tilt=%g", o.Azimuth, o.Tilt)
}

// OptimalTilt returns the rule-of-thumb tilt round(lat - 15).
func OptimalTilt(latitude float64) float64 {
	return math.Round(latitude - 15)
}

// TiltSpec is a tilt as written in a setup table: a number or "optimal".
type TiltSpec struct {
	Optimal bool
	Degrees float64
}

// ParseTiltSpec accepts a number of degrees or the "optimal" sentinel.
func ParseTiltSpec(raw string) (TiltSpec, error) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, OptimalTiltLabel) {
		return TiltSpec{Optimal: true}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return TiltSpec{}, fmt.Errorf("%w: tilt %q", ErrInvalidInput, raw)
	}
	if v < 0 || v > 90 {
		return TiltSpec{}, fmt.Errorf("%w: tilt %g outside [0, 90]", ErrInvalidInput, v)
	}
	return TiltSpec{Degrees: v}, nil
}

// Resolve returns the numeric tilt for the given latitude.
func (t TiltSpec) Resolve(latitude float64) float64 {
	if t.Optimal {
		return OptimalTilt(latitude)
	}
	return t.Degrees
}

func (t TiltSpec) String() string {
	if t.Optimal {
		return OptimalTiltLabel
	}
	return strconv.FormatFloat(t.Degrees, 'f', -1, 64)
}
