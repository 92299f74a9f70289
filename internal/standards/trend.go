package standards

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
)

type Direction string

const (
	Improving Direction = "improving"
	Declining Direction = "declining"
	Stable    Direction = "stable"
)

// ProgressTrend describes how one student's ratings on one standard moved.
type ProgressTrend struct {
	Direction   Direction `json:"direction"`
	Slope       float64   `json:"slope"`
	Improvement float64   `json:"improvement"`
	Consistency float64   `json:"consistency"`
}

// Trend computes the trend of ratings already sorted by date. The slope is
// the least-squares fit of level against position, so uneven gaps between
// dates are not weighted.
func Trend(ordered []grades.StandardsGrade) ProgressTrend {
	n := len(ordered)
	if n < 2 {
		return ProgressTrend{Direction: Stable, Consistency: 1}
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, g := range ordered {
		xs[i] = float64(i)
		ys[i] = float64(g.ProficiencyLevel)
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	_, variance := stat.PopMeanVariance(ys, nil)
	consistency := math.Min(1, math.Max(0, 1-math.Sqrt(variance)/2))

	improvement := ys[n-1] - ys[0]
	dir := Stable
	switch {
	case improvement > 0:
		dir = Improving
	case improvement < 0:
		dir = Declining
	}
	return ProgressTrend{
		Direction:   dir,
		Slope:       grading.Round3(slope),
		Improvement: grading.Round2(improvement),
		Consistency: grading.Round2(consistency),
	}
}

// OverallTrendResult aggregates the trends of several standards.
type OverallTrendResult struct {
	Direction             Direction `json:"direction"`
	AverageImprovement    float64   `json:"average_improvement"`
	ImprovingStandards    int       `json:"improving_standards"`
	TotalStandards        int       `json:"total_standards"`
	ImprovementPercentage int       `json:"improvement_percentage"`
}

// overallDeadBand keeps small average movements from flipping the direction.
const overallDeadBand = 0.1

// OverallTrend averages the improvement of every entry.
func OverallTrend(progress []StandardProgress) OverallTrendResult {
	if len(progress) == 0 {
		return OverallTrendResult{Direction: Stable}
	}
	sum, improving := 0.0, 0
	for _, p := range progress {
		sum += p.Trend.Improvement
		if p.Trend.Improvement > 0 {
			improving++
		}
	}
	avg := sum / float64(len(progress))
	dir := Stable
	switch {
	case avg > overallDeadBand:
		dir = Improving
	case avg < -overallDeadBand:
		dir = Declining
	}
	return OverallTrendResult{
		Direction:             dir,
		AverageImprovement:    grading.Round2(avg),
		ImprovingStandards:    improving,
		TotalStandards:        len(progress),
		ImprovementPercentage: int(math.Round(float64(improving) / float64(len(progress)) * 100)),
	}
}

// SortByDate returns a copy of gs ordered by date, oldest first. Equal dates
// keep their input order.
func SortByDate(gs []grades.StandardsGrade) []grades.StandardsGrade {
	out := make([]grades.StandardsGrade, len(gs))
	copy(out, gs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
