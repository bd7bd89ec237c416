package normalization

import (
	"fmt"
	"strings"

	"github.com/kilianp07/pvcompare/core/model"
)

// Mode selects the peak used to normalize a yield series.
type Mode string

const (
	// ModeReferenceConditions divides by the STC power of the module.
	ModeReferenceConditions Mode = "reference_conditions"
	// ModeRealWorldConditions divides by the power at the reference
	// weather timestep closest to STC.
	ModeRealWorldConditions Mode = "real_world_conditions"
	// ModeIntendedEfficiency divides by area x efficiency. It is a sizing
	// peak; using it for a yield series is reported as misuse.
	ModeIntendedEfficiency Mode = "intended_efficiency"
	// ModeNone skips normalization and only converts W to kW.
	ModeNone Mode = "none"
)

var modeAliases = map[string]Mode{
	"reference_conditions":  ModeReferenceConditions,
	"nstc":                  ModeReferenceConditions,
	"real_world_conditions": ModeRealWorldConditions,
	"nrwc":                  ModeRealWorldConditions,
	"intended_efficiency":   ModeIntendedEfficiency,
	"nint":                  ModeIntendedEfficiency,
	"none":                  ModeNone,
	"":                      ModeNone,
}

// ParseMode accepts the mode names and their short forms NSTC, NRWC, NINT.
func ParseMode(s string) (Mode, error) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: mode %q", model.ErrUnsupportedNormalization, s)
	}
	return m, nil
}

func (m Mode) String() string { return string(m) }

// SizingStrategy selects the per-module peak used for capacity ceilings. It
// is kept apart from Mode so that sizing never depends on the yield mode a
// caller asked for.
type SizingStrategy string

const (
	SizingIntendedEfficiency  SizingStrategy = "intended_efficiency"
	SizingReferenceConditions SizingStrategy = "reference_conditions"
)

// ParseSizingStrategy defaults to SizingIntendedEfficiency on empty input.
func ParseSizingStrategy(s string) (SizingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "intended_efficiency", "nint":
		return SizingIntendedEfficiency, nil
	case "reference_conditions", "nstc":
		return SizingReferenceConditions, nil
	default:
		return "", fmt.Errorf("%w: sizing strategy %q", model.ErrUnsupportedNormalization, s)
	}
}
