package model

import (
	"fmt"
	"time"
)

// WeatherSample is one timestep of meteorological input.
type WeatherSample struct {
	Time              time.Time `json:"time"`
	GHI               float64   `json:"ghi"`        // global horizontal irradiance W/m2
	DNI               float64   `json:"dni"`        // direct normal irradiance W/m2
	DHI               float64   `json:"dhi"`        // diffuse horizontal irradiance W/m2
	TempAir           float64   `json:"temp_air"`   // ambient temperature degC
	WindSpeed         float64   `json:"wind_speed"` // m/s
	PrecipitableWater float64   `json:"precipitable_water"`
}

// WeatherSeries is an ordered sequence of weather samples.
type WeatherSeries struct {
	Samples []WeatherSample
	// HasPrecipitableWater is set when the source carried the column.
	HasPrecipitableWater bool
}

// Len returns the number of samples.
func (w WeatherSeries) Len() int { return len(w.Samples) }

// Times returns the timestamps of the series.
func (w WeatherSeries) Times() []time.Time {
	out := make([]time.Time, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = s.Time
	}
	return out
}

// Slice returns a series holding samples [i, j).
func (w WeatherSeries) Slice(i, j int) WeatherSeries {
	return WeatherSeries{Samples: w.Samples[i:j], HasPrecipitableWater: w.HasPrecipitableWater}
}

// Year returns the calendar year of the first sample, or 0 when empty.
func (w WeatherSeries) Year() int {
	if len(w.Samples) == 0 {
		return 0
	}
	return w.Samples[0].Time.Year()
}

// Validate checks ordering and physical bounds.
func (w WeatherSeries) Validate() error {
	if len(w.Samples) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidWeather)
	}
	for i, s := range w.Samples {
		if i > 0 && !s.Time.After(w.Samples[i-1].Time) {
			return fmt.Errorf("%w: timestamp %s not after %s", ErrInvalidWeather, s.Time, w.Samples[i-1].Time)
		}
		if s.GHI < 0 || s.DNI < 0 || s.DHI < 0 {
			return fmt.Errorf("%w: negative irradiance at %s", ErrInvalidWeather, s.Time)
		}
	}
	return nil
}
