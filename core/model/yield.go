package model

import (
	"fmt"
	"strconv"
	"time"
)

// Unit tags the physical unit of a YieldSeries.
type Unit string

const (
	UnitWatt     Unit = "W"
	UnitKilowatt Unit = "kW"
	// UnitSpecific is power per installed peak power.
	UnitSpecific Unit = "kW/kWp"
)

// SeriesKey identifies a yield series artifact. Two computations with the
// same key are interchangeable.
type SeriesKey struct {
	Technology Technology `json:"technology"`
	Azimuth    float64    `json:"azimuth"`
	Tilt       float64    `json:"tilt"`
	Year       int        `json:"year"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// String encodes the key as technology_azimuth_tilt_year_lat_lon.
func (k SeriesKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%d_%s_%s", k.Technology, fmtFloat(k.Azimuth), fmtFloat(k.Tilt),
		k.Year, fmtFloat(k.Latitude), fmtFloat(k.Longitude))
}

// FileName returns the CSV file name used for the artifact.
func (k SeriesKey) FileName() string { return k.String() + ".csv" }

// YieldSeries is a power time series produced for one key.
type YieldSeries struct {
	Key    SeriesKey   `json:"key"`
	Unit   Unit        `json:"unit"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

// Len returns the number of samples.
func (y YieldSeries) Len() int { return len(y.Values) }

// Clone returns a deep copy so that cached artifacts are never aliased.
func (y YieldSeries) Clone() YieldSeries {
	out := YieldSeries{Key: y.Key, Unit: y.Unit}
	out.Times = append([]time.Time(nil), y.Times...)
	out.Values = append([]float64(nil), y.Values...)
	return out
}
