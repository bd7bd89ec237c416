package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTechnology is returned for technology tags without a model.
	ErrUnsupportedTechnology = errors.New("unsupported technology")
	// ErrUnsupportedNormalization is returned for unknown normalization modes
	// or sizing strategies.
	ErrUnsupportedNormalization = errors.New("unsupported normalization")
	// ErrMissingColumn is returned when an input table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrReferenceDataUnavailable is returned when the canonical reference
	// weather series cannot be loaded.
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")
	// ErrInvalidModuleArea signals a module area <= 0.
	ErrInvalidModuleArea = errors.New("module area must be positive")
	// ErrInvalidInput signals NaN or negative physical inputs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownSurfaceType is returned for surface types outside the supported set.
	ErrUnknownSurfaceType = errors.New("unknown surface type")
	// ErrUnknownPSIType is returned for unknown perovskite-silicon calibrations.
	ErrUnknownPSIType = errors.New("unknown psi type")
	// ErrInvalidWeather is returned by WeatherSeries.Validate.
	ErrInvalidWeather = errors.New("invalid weather series")
)

// UnsupportedTechnologyError carries the offending technology tag.
type UnsupportedTechnologyError struct {
	Tag string
}

func (e *UnsupportedTechnologyError) Error() string {
	return fmt.Sprintf("unsupported technology %q: choose si, cpv or psi", e.Tag)
}

// Is reports ErrUnsupportedTechnology as the sentinel of this error.
func (e *UnsupportedTechnologyError) Is(target error) bool {
	return target == ErrUnsupportedTechnology
}

// MissingColumnError names the column absent from an input table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Table, e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
