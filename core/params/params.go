package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/pvcompare/core/model"
)

// ModuleParameters are the standard test condition constants of one cell or
// module.
type ModuleParameters struct {
	Name string `json:"name"`
	// ImpRef is the current at maximum power point under STC [A].
	ImpRef float64 `json:"imp_ref"`
	// VmpRef is the voltage at maximum power point under STC [V].
	VmpRef float64 `json:"vmp_ref"`
	// Area is the module active area [m2].
	Area float64 `json:"area"`
	// Efficiency is the intended module efficiency in percent.
	Efficiency float64 `json:"efficiency"`
	// AlphaImp is the relative temperature coefficient of Imp [1/K].
	AlphaImp float64 `json:"alpha_imp"`
	// BetaVmp is the relative temperature coefficient of Vmp [1/K].
	BetaVmp float64 `json:"beta_vmp"`
	// VoltageIrradiance scales the logarithmic dependence of Vmp on
	// effective irradiance.
	VoltageIrradiance float64 `json:"voltage_irradiance"`
	// AirMass holds the A0..A4 spectral polynomial in absolute air mass.
	AirMass [5]float64 `json:"air_mass"`
	// IAM is the ASHRAE incidence angle modifier coefficient b0.
	IAM float64 `json:"iam"`
	// Thermal model coefficients: module temperature a, b and the
	// cell-to-module temperature difference at 1000 W/m2.
	ThermalA  float64 `json:"thermal_a"`
	ThermalB  float64 `json:"thermal_b"`
	ThermalDT float64 `json:"thermal_dt"`
	// Spectral holds first-solar style precipitable water coefficients.
	// Zero values disable the correction.
	Spectral [6]float64 `json:"spectral"`
}

// PeakSTC returns Imp x Vmp at standard test conditions.
func (p ModuleParameters) PeakSTC() float64 { return p.ImpRef * p.VmpRef }

// CPVParameters describes the concentrator + flat hybrid module.
type CPVParameters struct {
	Concentrator ModuleParameters `json:"concentrator"`
	Flat         ModuleParameters `json:"flat"`
	// Area and Efficiency describe the complete hybrid module.
	Area       float64 `json:"area"`
	Efficiency float64 `json:"efficiency"`
	// AcceptanceAngle is the maximum angle of incidence in degrees for which
	// the concentrator optics track the beam.
	AcceptanceAngle float64 `json:"acceptance_angle"`
	// OpticalEfficiency is the fraction of beam irradiance reaching the
	// concentrator cells.
	OpticalEfficiency float64 `json:"optical_efficiency"`
}

// PSIType names a perovskite-silicon cell calibration.
type PSIType string

const (
	PSIKorte2020 PSIType = "Korte2020"
	PSIChen2020  PSIType = "Chen2020"
)

// ParsePSIType matches name case-insensitively against the known calibrations.
func ParsePSIType(name string) (PSIType, error) {
	for _, t := range []PSIType{PSIKorte2020, PSIChen2020} {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", model.ErrUnknownPSIType, name)
}

// TandemParameters describes a two-terminal spectral-splitting tandem.
type TandemParameters struct {
	Type       PSIType          `json:"type"`
	Top        ModuleParameters `json:"top"`
	Bottom     ModuleParameters `json:"bottom"`
	Area       float64          `json:"area"`
	Efficiency float64          `json:"efficiency"`
	// CellToModuleLoss is the fractional loss applied to the sum of sub-cell
	// powers.
	CellToModuleLoss float64 `json:"cell_to_module_loss"`
}

// Registry is an immutable lookup of technology parameters.
type Registry struct {
	si  ModuleParameters
	cpv CPVParameters
	psi map[PSIType]TandemParameters
}

// NewRegistry builds a registry from explicit tables. The psi map is copied.
func NewRegistry(si ModuleParameters, cpv CPVParameters, psi map[PSIType]TandemParameters) *Registry {
	cp := make(map[PSIType]TandemParameters, len(psi))
	for k, v := range psi {
		cp[k] = v
	}
	return &Registry{si: si, cpv: cpv, psi: cp}
}

// Si returns the flat-plate silicon module.
func (r *Registry) Si() ModuleParameters { return r.si }

// CPV returns the hybrid concentrator module.
func (r *Registry) CPV() CPVParameters { return r.cpv }

// PSI returns the tandem calibration for t.
func (r *Registry) PSI(t PSIType) (TandemParameters, error) {
	p, ok := r.psi[t]
	if !ok {
		return TandemParameters{}, fmt.Errorf("%w: %q", model.ErrUnknownPSIType, t)
	}
	return p, nil
}

// PSITypes lists the registered calibrations in sorted order.
func (r *Registry) PSITypes() []PSIType {
	out := make([]PSIType, 0, len(r.psi))
	for k := range r.psi {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
