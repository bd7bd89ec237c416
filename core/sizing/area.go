package sizing

import (
	"fmt"
	"math"
	"strings"

	"github.com/kilianp07/pvcompare/core/model"
)

// SurfaceType names a building surface that can host PV.
type SurfaceType string

const (
	FlatRoof    SurfaceType = "flat_roof"
	GableRoof   SurfaceType = "gable_roof"
	SouthFacade SurfaceType = "south_facade"
	EastFacade  SurfaceType = "east_facade"
	WestFacade  SurfaceType = "west_facade"
)

// SurfaceTypes lists the supported surfaces.
var SurfaceTypes = []SurfaceType{FlatRoof, GableRoof, SouthFacade, EastFacade, WestFacade}

// ParseSurfaceType validates s against SurfaceTypes.
func ParseSurfaceType(s string) (SurfaceType, error) {
	st := SurfaceType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SurfaceTypes {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q, choose from %v", model.ErrUnknownSurfaceType, s, SurfaceTypes)
}

// BuildingParameters describe the typical residential building of the
// district.
type BuildingParameters struct {
	PopulationPerStorey  float64 `json:"population_per_storey"`
	Storeys              float64 `json:"storeys"`
	StoreyHeight         float64 `json:"storey_height"`
	TotalStoreyArea      float64 `json:"total_storey_area"`
	LengthSouthFacade    float64 `json:"length_south_facade"`
	LengthEastWestFacade float64 `json:"length_east_west_facade"`
	// RoofShare is the usable fraction of the roof.
	RoofShare float64 `json:"roof_share"`
	// FacadeShare is the usable fraction of a facade (without windows).
	FacadeShare float64 `json:"facade_share"`
	// GableRoofTilt is the roof pitch in degrees.
	GableRoofTilt float64 `json:"gable_roof_tilt"`
}

// DefaultBuildingParameters describes a five storey apartment block.
var DefaultBuildingParameters = BuildingParameters{
	PopulationPerStorey:  20,
	Storeys:              5,
	StoreyHeight:         3,
	TotalStoreyArea:      1232,
	LengthSouthFacade:    44,
	LengthEastWestFacade: 28,
	RoofShare:            0.7,
	FacadeShare:          0.5,
	GableRoofTilt:        35,
}

// Validate checks that every dimension is positive and shares are in (0, 1].
func (b BuildingParameters) Validate() error {
	for name, v := range map[string]float64{
		"population_per_storey":   b.PopulationPerStorey,
		"storeys":                 b.Storeys,
		"storey_height":           b.StoreyHeight,
		"total_storey_area":       b.TotalStoreyArea,
		"length_south_facade":     b.LengthSouthFacade,
		"length_east_west_facade": b.LengthEastWestFacade,
	} {
		if !(v > 0) {
			return fmt.Errorf("%w: building %s must be positive, got %v", model.ErrInvalidInput, name, v)
		}
	}
	if !(b.RoofShare > 0 && b.RoofShare <= 1) || !(b.FacadeShare > 0 && b.FacadeShare <= 1) {
		return fmt.Errorf("%w: building shares must be in (0, 1]", model.ErrInvalidInput)
	}
	if b.GableRoofTilt < 0 || b.GableRoofTilt >= 90 {
		return fmt.Errorf("%w: gable roof tilt %v", model.ErrInvalidInput, b.GableRoofTilt)
	}
	return nil
}

// Houses returns the number of buildings needed to house population.
func (b BuildingParameters) Houses(population float64) float64 {
	return population / (b.PopulationPerStorey * b.Storeys)
}

// AreaPotential returns the usable area in m2 of surface across all the
// buildings housing population.
func AreaPotential(population float64, b BuildingParameters, surface SurfaceType) (float64, error) {
	if !(population >= 0) {
		return 0, fmt.Errorf("%w: population %v", model.ErrInvalidInput, population)
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	facadeHeight := b.Storeys * b.StoreyHeight
	var perHouse float64
	switch surface {
	case FlatRoof:
		perHouse = b.TotalStoreyArea * b.RoofShare
	case GableRoof:
		// south half of the roof, stretched by the pitch
		perHouse = b.TotalStoreyArea / 2 / math.Cos(b.GableRoofTilt*math.Pi/180) * b.RoofShare
	case SouthFacade:
		perHouse = b.LengthSouthFacade * facadeHeight * b.FacadeShare
	case EastFacade, WestFacade:
		perHouse = b.LengthEastWestFacade * facadeHeight * b.FacadeShare
	default:
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownSurfaceType, surface)
	}
	return perHouse * b.Houses(population), nil
}
