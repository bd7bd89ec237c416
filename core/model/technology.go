package model

import "strings"

// Technology identifies a PV technology variant.
type Technology string

const (
	// TechSi is flat-plate crystalline silicon.
	TechSi Technology = "si"
	// TechCPV is the concentrator + flat-plate hybrid.
	TechCPV Technology = "cpv"
	// TechPSI is tandem perovskite-silicon.
	TechPSI Technology = "psi"
)

// Technologies lists all supported variants.
var Technologies = []Technology{TechSi, TechCPV, TechPSI}

// ParseTechnology returns the Technology for tag or an
// *UnsupportedTechnologyError.
func ParseTechnology(tag string) (Technology, error) {
	t := Technology(strings.ToLower(strings.TrimSpace(tag)))
	switch t {
	case TechSi, TechCPV, TechPSI:
		return t, nil
	default:
		return "", &UnsupportedTechnologyError{Tag: tag}
	}
}

func (t Technology) String() string { return string(t) }
