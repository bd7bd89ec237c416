package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/normalization"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/peakfinder"
	"github.com/kilianp07/pvcompare/core/sizing"
)

// SiteConfig locates the simulated district and its weather.
type SiteConfig struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude"`
	Population float64 `json:"population"`
	// Weather is the path of the site weather CSV.
	Weather string `json:"weather"`
	// Year restricts the weather file to one calendar year when non-zero.
	Year     int                        `json:"year"`
	Building *sizing.BuildingParameters `json:"building"`
}

func (c *SiteConfig) SetDefaults() {
	if c.Building == nil {
		b := sizing.DefaultBuildingParameters
		c.Building = &b
	}
}

func (c SiteConfig) Validate() error {
	if err := c.Location().Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if c.Population < 0 {
		return fmt.Errorf("site.population must not be negative")
	}
	if c.Building != nil {
		if err := c.Building.Validate(); err != nil {
			return fmt.Errorf("site: %w", err)
		}
	}
	return nil
}

// Location returns the site coordinates.
func (c SiteConfig) Location() model.Location {
	return model.Location{Latitude: c.Latitude, Longitude: c.Longitude, Altitude: c.Altitude}
}

// PVConfig selects the technology calibration and normalization.
type PVConfig struct {
	PSIType       string `json:"psi_type"`
	Normalization string `json:"normalization"`
	Sizing        string `json:"sizing"`
	// Setup is the path of the setup table (CSV or YAML).
	Setup string `json:"setup"`
}

func (c *PVConfig) SetDefaults() {
	if c.PSIType == "" {
		c.PSIType = string(params.PSIKorte2020)
	}
	if c.Normalization == "" {
		c.Normalization = string(normalization.ModeReferenceConditions)
	}
	if c.Sizing == "" {
		c.Sizing = string(normalization.SizingIntendedEfficiency)
	}
}

func (c PVConfig) Validate() error {
	if _, err := params.ParsePSIType(c.PSIType); err != nil {
		return fmt.Errorf("pv.psi_type: %w", err)
	}
	if _, err := normalization.ParseMode(c.Normalization); err != nil {
		return fmt.Errorf("pv.normalization: %w", err)
	}
	if _, err := normalization.ParseSizingStrategy(c.Sizing); err != nil {
		return fmt.Errorf("pv.sizing: %w", err)
	}
	return nil
}

// ReferenceConfig locates the canonical reference weather used by the
// real-world peak search.
type ReferenceConfig struct {
	Path      string        `json:"path"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Altitude  float64       `json:"altitude"`
	Year      int           `json:"year"`
	Timeout   time.Duration `json:"timeout"`
}

// Canonical reference site.
const (
	DefaultReferenceLatitude  = 40.3
	DefaultReferenceLongitude = 5.4
	DefaultReferenceYear      = 2015
)

func (c *ReferenceConfig) SetDefaults() {
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude = DefaultReferenceLatitude
		c.Longitude = DefaultReferenceLongitude
	}
	if c.Year == 0 {
		c.Year = DefaultReferenceYear
	}
	if c.Timeout <= 0 {
		c.Timeout = peakfinder.DefaultTimeout
	}
}

func (c ReferenceConfig) Validate() error {
	if err := c.Location().Validate(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	return nil
}

// Location returns the reference site coordinates.
func (c ReferenceConfig) Location() model.Location {
	return model.Location{Latitude: c.Latitude, Longitude: c.Longitude, Altitude: c.Altitude}
}

// ProductionConfig controls the energy production record.
type ProductionConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
	// Overwrite recreates a missing or mismatching record with defaults.
	Overwrite *bool `json:"overwrite"`
}

func (c *ProductionConfig) SetDefaults() {
	if c.Overwrite == nil {
		t := true
		c.Overwrite = &t
	}
}

func (c ProductionConfig) Validate() error {
	if c.Enabled && c.Dir == "" {
		return fmt.Errorf("production.dir is required")
	}
	return nil
}

// ScenarioConfig bounds row parallelism.
type ScenarioConfig struct {
	Workers int `json:"workers"`
}

func (c *ScenarioConfig) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 1
	}
}

func (c ScenarioConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("scenario.workers must not be negative")
	}
	return nil
}
