// Package sizing derives the installable capacity ceiling of a surface and
// the surface area available on the buildings of a district.
package sizing

import (
	"fmt"
	"math"

	"github.com/kilianp07/pvcompare/core/model"
)

// Ceiling is an installed capacity upper bound in kWp.
type Ceiling float64

// KWp returns the ceiling as a float.
func (c Ceiling) KWp() float64 { return float64(c) }

// Size returns round(area / moduleArea * peak) / 1000: the number of module
// footprints fitting in area times the per-module peak, rounded to the watt
// with halves going to the even watt, and expressed in kWp.
func Size(area, peak, moduleArea float64) (Ceiling, error) {
	if !(moduleArea > 0) || math.IsInf(moduleArea, 0) {
		return 0, fmt.Errorf("%w: got %v", model.ErrInvalidModuleArea, moduleArea)
	}
	if !(area >= 0) || math.IsInf(area, 0) {
		return 0, fmt.Errorf("%w: area %v", model.ErrInvalidInput, area)
	}
	if !(peak >= 0) || math.IsInf(peak, 0) {
		return 0, fmt.Errorf("%w: peak %v", model.ErrInvalidInput, peak)
	}
	return Ceiling(math.RoundToEven(area/moduleArea*peak) / 1000), nil
}
