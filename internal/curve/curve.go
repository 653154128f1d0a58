package curve

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

const (
	// MinPoints is the minimum number of breakpoints a curve must have
	MinPoints = 2
	// MaxPoints is the maximum number of breakpoints a curve may have
	MaxPoints = 10
)

// Point is a single breakpoint of a fan curve, mapping a temperature
// (in degrees) to a duty cycle (in percent).
type Point struct {
	Temperature float64 `json:"temperature"`
	Duty        int     `json:"duty"`
}

// Curve is an immutable, validated sequence of breakpoints sorted by
// temperature. Edits create a new Curve via New.
type Curve struct {
	points []Point
}

// New validates the given breakpoints and returns a Curve with the
// points sorted ascending by temperature. Duty cycles must lie within
// [minDuty, maxDuty] and temperatures must be strictly increasing.
func New(points []Point, minDuty int, maxDuty int) (Curve, error) {
	if len(points) < MinPoints {
		return Curve{}, fmt.Errorf("curve must have at least %d points, got %d", MinPoints, len(points))
	}
	if len(points) > MaxPoints {
		return Curve{}, fmt.Errorf("curve must have at most %d points, got %d", MaxPoints, len(points))
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})

	for i, point := range sorted {
		if i > 0 && point.Temperature == sorted[i-1].Temperature {
			return Curve{}, fmt.Errorf("duplicate curve temperature %.1f", point.Temperature)
		}
		if point.Duty < minDuty || point.Duty > maxDuty {
			return Curve{}, fmt.Errorf("curve duty %d at %.1f° outside [%d, %d]", point.Duty, point.Temperature, minDuty, maxDuty)
		}
	}

	return Curve{points: sorted}, nil
}

// Evaluate maps the given temperature to a duty cycle percentage.
// Temperatures at or below the first breakpoint clamp to its duty,
// temperatures at or above the last breakpoint clamp to its duty,
// anything in between is linearly interpolated and rounded to the
// nearest integer percentage.
func (c Curve) Evaluate(temperature float64) int {
	points := c.points
	if temperature <= points[0].Temperature {
		return points[0].Duty
	}
	last := points[len(points)-1]
	if temperature >= last.Temperature {
		return last.Duty
	}

	for i := 0; i < len(points)-1; i++ {
		current := points[i]
		next := points[i+1]
		if temperature >= next.Temperature {
			continue
		}

		ratio := (temperature - current.Temperature) / (next.Temperature - current.Temperature)
		interpolation := float64(current.Duty) + ratio*float64(next.Duty-current.Duty)
		return int(math.Round(interpolation))
	}

	return last.Duty
}

// Points returns a copy of the curve's breakpoints.
func (c Curve) Points() []Point {
	points := make([]Point, len(c.points))
	copy(points, c.points)
	return points
}

func (c Curve) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.points)
}
