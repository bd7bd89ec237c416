package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/pvcompare/core/model"
)

// Setup table column names.
const (
	ColSurfaceType = "surface_type"
	ColTechnology  = "technology"
	ColAzimuth     = "surface_azimuth"
	ColTilt        = "surface_tilt"
	// ColArea optionally overrides the computed area potential in m2.
	ColArea = "area"
)

// RequiredColumns must be present in every setup table.
var RequiredColumns = []string{ColSurfaceType, ColTechnology, ColAzimuth, ColTilt}

// SetupRow is one entry of the setup table. Technology and surface type are
// kept as written and validated when the row is evaluated, so that a bad
// value fails only its own row.
type SetupRow struct {
	SurfaceType string         `json:"surface_type" yaml:"surface_type"`
	Technology  string         `json:"technology" yaml:"technology"`
	Azimuth     float64        `json:"surface_azimuth" yaml:"surface_azimuth"`
	Tilt        model.TiltSpec `json:"-" yaml:"-"`
	// Area overrides the area potential when positive.
	Area float64 `json:"area,omitempty" yaml:"area,omitempty"`
	// Err is a parse error of the row. It is reported when the row is
	// evaluated and fails only that row.
	Err error `json:"-" yaml:"-"`
}

// CheckColumns returns a *model.MissingColumnError for the first required
// column absent from header.
func CheckColumns(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	for _, c := range RequiredColumns {
		if !have[c] {
			return &model.MissingColumnError{Table: "pv_setup", Column: c}
		}
	}
	return nil
}

// ParseRow builds a SetupRow from a record keyed by column name.
func ParseRow(rec map[string]string) (SetupRow, error) {
	for _, c := range RequiredColumns {
		if _, ok := rec[c]; !ok {
			return SetupRow{}, &model.MissingColumnError{Table: "pv_setup", Column: c}
		}
	}
	az, err := strconv.ParseFloat(strings.TrimSpace(rec[ColAzimuth]), 64)
	if err != nil {
		return SetupRow{}, fmt.Errorf("%w: azimuth %q", model.ErrInvalidInput, rec[ColAzimuth])
	}
	tilt, err := model.ParseTiltSpec(rec[ColTilt])
	if err != nil {
		return SetupRow{}, err
	}
	row := SetupRow{
		SurfaceType: strings.TrimSpace(rec[ColSurfaceType]),
		Technology:  strings.TrimSpace(rec[ColTechnology]),
		Azimuth:     az,
		Tilt:        tilt,
	}
	if v := strings.TrimSpace(rec[ColArea]); v != "" {
		if row.Area, err = strconv.ParseFloat(v, 64); err != nil {
			return SetupRow{}, fmt.Errorf("%w: area %q", model.ErrInvalidInput, v)
		}
	}
	return row, nil
}

// PlantLabel returns the energy production label of the i-th row (0-based).
func PlantLabel(i int) string { return "pv_plant_0" + strconv.Itoa(i+1) }
