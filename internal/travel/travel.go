// Package travel supplies transition-overhead hints between
// consecutive blocks. Callers without coordinate data get zero
// overhead everywhere.
package travel

import (
	"math"

	"github.com/ksakurai/memoplan/internal/models"
)

// DefaultMinutesPerUnit converts one unit of grid distance into
// minutes of travel.
const DefaultMinutesPerUnit = 3.0

// Estimator converts a pair of location hints into a transition
// overhead in minutes. Implementations must treat a missing hint
// (nil) as zero overhead.
type Estimator interface {
	Minutes(from, to *models.Coordinate) int
}

// GridEstimator derives travel minutes from euclidean distance on the
// caller's coordinate grid.
type GridEstimator struct {
	MinutesPerUnit float64
}

func NewGridEstimator(minutesPerUnit float64) GridEstimator {
	if minutesPerUnit <= 0 {
		minutesPerUnit = DefaultMinutesPerUnit
	}
	return GridEstimator{MinutesPerUnit: minutesPerUnit}
}

func (e GridEstimator) Minutes(from, to *models.Coordinate) int {
	if from == nil || to == nil {
		return 0
	}
	distance := math.Hypot(from.X-to.X, from.Y-to.Y)
	return int(math.Round(distance * e.MinutesPerUnit))
}
