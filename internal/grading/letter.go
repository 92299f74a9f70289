package grading

import "math"

type band struct {
	min    float64
	letter string
}

// letterBands is ordered by descending threshold; a boundary value belongs to
// the higher band.
var letterBands = []band{
	{93, "A"},
	{90, "A-"},
	{87, "B+"},
	{83, "B"},
	{80, "B-"},
	{77, "C+"},
	{73, "C"},
	{70, "C-"},
	{67, "D+"},
	{63, "D"},
	{60, "D-"},
}

// Letters lists every letter LetterGrade can return, best first.
var Letters = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"}

// LetterGrade maps a percentage to a letter grade. NaN yields "N/A".
func LetterGrade(pct float64) string {
	if math.IsNaN(pct) {
		return "N/A"
	}
	for _, b := range letterBands {
		if pct >= b.min {
			return b.letter
		}
	}
	return "F"
}

// PerformanceLevel is the coarse wording used on student summaries.
func PerformanceLevel(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 80:
		return "Above Average"
	case pct >= 70:
		return "Average"
	case pct >= 60:
		return "Below Average"
	}
	return "Needs Improvement"
}
