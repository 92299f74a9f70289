package grading

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises a set of percentages.
type Stats struct {
	Average           float64        `json:"average"`
	Median            float64        `json:"median"`
	Highest           float64        `json:"highest"`
	Lowest            float64        `json:"lowest"`
	StandardDeviation float64        `json:"standard_deviation"`
	Distribution      map[string]int `json:"distribution"`
}

// ComputeStats returns the average, median, extremes, population standard
// deviation and letter distribution of pcts. NaN entries are ignored; an empty
// input yields zeros and an empty distribution.
func ComputeStats(pcts []float64) Stats {
	xs := make([]float64, 0, len(pcts))
	for _, p := range pcts {
		if !math.IsNaN(p) {
			xs = append(xs, p)
		}
	}
	if len(xs) == 0 {
		return Stats{Distribution: map[string]int{}}
	}
	sort.Float64s(xs)

	mean, variance := stat.PopMeanVariance(xs, nil)
	return Stats{
		Average:           Round2(mean),
		Median:            Round2(median(xs)),
		Highest:           Round2(xs[len(xs)-1]),
		Lowest:            Round2(xs[0]),
		StandardDeviation: Round2(math.Sqrt(variance)),
		Distribution:      LetterDistribution(xs),
	}
}

// median expects sorted input; even lengths average the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// LetterDistribution counts pcts per letter grade; every letter is present.
func LetterDistribution(pcts []float64) map[string]int {
	out := make(map[string]int, len(Letters))
	for _, l := range Letters {
		out[l] = 0
	}
	for _, p := range pcts {
		if l := LetterGrade(p); l != "N/A" {
			out[l]++
		}
	}
	return out
}

// ApplyLatePenalty deducts penaltyPct percent of score when submitted is after
// due. Zero times disable the penalty.
func ApplyLatePenalty(score float64, due, submitted time.Time, penaltyPct float64) float64 {
	if due.IsZero() || submitted.IsZero() || !submitted.After(due) {
		return score
	}
	return math.Max(0, score-score*penaltyPct/100)
}

// Semester labels a date as "Fall YYYY", "Spring YYYY" or "Summer YYYY".
func Semester(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	switch m := t.Month(); {
	case m >= time.September || m == time.January:
		return "Fall " + t.Format("2006")
	case m <= time.May:
		return "Spring " + t.Format("2006")
	}
	return "Summer " + t.Format("2006")
}

// Quarter labels a date with its school-year quarter, Q1 starting in September.
func Quarter(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	switch m := t.Month(); {
	case m >= time.September && m <= time.November:
		return "Q1"
	case m == time.December || m <= time.February:
		return "Q2"
	case m >= time.March && m <= time.May:
		return "Q3"
	}
	return "Q4"
}
