// Package weather reads meteorological time series from CSV files.
package weather

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pvcompare/core/model"
)

// Column names of a weather file.
const (
	ColTime              = "time"
	ColGHI               = "ghi"
	ColDNI               = "dni"
	ColDHI               = "dhi"
	ColTempAir           = "temp_air"
	ColWindSpeed         = "wind_speed"
	ColPrecipitableWater = "precipitable_water"
)

var required = []string{ColTime, ColGHI, ColDHI, ColTempAir, ColWindSpeed}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ReadCSV decodes a weather table. When the dni column is absent it is
// derived as ghi - dhi, clipped at zero.
func ReadCSV(r io.Reader) (model.WeatherSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.WeatherSeries{}, fmt.Errorf("%w: empty weather file", model.ErrInvalidWeather)
		}
		return model.WeatherSeries{}, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// pandas writes the index column without a name
	if _, ok := idx[ColTime]; !ok {
		if i, ok := idx[""]; ok {
			idx[ColTime] = i
		}
	}
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			return model.WeatherSeries{}, &model.MissingColumnError{Table: "weather", Column: c}
		}
	}
	_, hasDNI := idx[ColDNI]
	_, hasPW := idx[ColPrecipitableWater]

	out := model.WeatherSeries{HasPrecipitableWater: hasPW}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.WeatherSeries{}, err
		}
		num := func(col string) (float64, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[col]]), 64)
			if err != nil {
				return 0, fmt.Errorf("line %d column %s: %w", line, col, err)
			}
			return v, nil
		}
		var s model.WeatherSample
		if s.Time, err = parseTime(strings.TrimSpace(rec[idx[ColTime]])); err != nil {
			return model.WeatherSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		if s.GHI, err = num(ColGHI); err != nil {
			return model.WeatherSeries{}, err
		}
		if s.DHI, err = num(ColDHI); err != nil {
			return model.WeatherSeries{}, err
		}
		if hasDNI {
			if s.DNI, err = num(ColDNI); err != nil {
				return model.WeatherSeries{}, err
			}
		} else {
			s.DNI = math.Max(s.GHI-s.DHI, 0)
		}
		if s.TempAir, err = num(ColTempAir); err != nil {
			return model.WeatherSeries{}, err
		}
		if s.WindSpeed, err = num(ColWindSpeed); err != nil {
			return model.WeatherSeries{}, err
		}
		if hasPW {
			if s.PrecipitableWater, err = num(ColPrecipitableWater); err != nil {
				return model.WeatherSeries{}, err
			}
		}
		out.Samples = append(out.Samples, s)
	}
	if err := out.Validate(); err != nil {
		return model.WeatherSeries{}, err
	}
	return out, nil
}

// LoadFile reads the weather CSV at path.
func LoadFile(path string) (model.WeatherSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.WeatherSeries{}, err
	}
	defer func() { _ = f.Close() }()
	w, err := ReadCSV(f)
	if err != nil {
		return model.WeatherSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// FilterYear keeps the samples of year. A zero year keeps everything.
func FilterYear(w model.WeatherSeries, year int) model.WeatherSeries {
	if year == 0 {
		return w
	}
	out := model.WeatherSeries{HasPrecipitableWater: w.HasPrecipitableWater}
	for _, s := range w.Samples {
		if s.Time.Year() == year {
			out.Samples = append(out.Samples, s)
		}
	}
	return out
}
