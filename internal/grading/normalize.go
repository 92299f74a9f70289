package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// ErrInvalidAssignment is matched by every *InvalidAssignmentError.
var ErrInvalidAssignment = errors.New("invalid assignment")

// InvalidAssignmentError reports an assignment whose max points cannot be
// used as a divisor.
type InvalidAssignmentError struct {
	MaxPoints float64
}

func (e *InvalidAssignmentError) Error() string {
	return fmt.Sprintf("invalid assignment: max points must be > 0 (got %v)", e.MaxPoints)
}

func (e *InvalidAssignmentError) Is(target error) bool { return target == ErrInvalidAssignment }

// Normalize converts points earned into a 0..100 percentage. Scores outside
// [0, maxPoints] are clamped rather than rejected.
func Normalize(score, maxPoints float64) (float64, error) {
	if !(maxPoints > 0) || math.IsInf(maxPoints, 1) {
		return 0, &InvalidAssignmentError{MaxPoints: maxPoints}
	}
	if math.IsNaN(score) {
		score = 0
	}
	return clamp(score, 0, maxPoints) / maxPoints * 100, nil
}

// PercentageOf returns the percentage of a traditional grade, computing it from
// score and points when points are known and falling back to the stored
// percentage otherwise.
func PercentageOf(g grades.TraditionalGrade) float64 {
	if p, err := Normalize(g.Score, g.Points); err == nil {
		return p
	}
	return clamp(g.Percentage, 0, 100)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round3 rounds half away from zero to three decimals.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
