// Package standards aggregates proficiency ratings per learning standard:
// averages, level distributions, mastery bands, trends over time, composite
// grades and the recommendations shown on progress reports.
package standards

import (
	"math"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

// DefaultMasteryThreshold is the average proficiency counted as mastered.
const DefaultMasteryThreshold = 3.0

// classicMaxLevel bounds AverageProficiency regardless of scale.
const classicMaxLevel = 4

// AverageProficiency averages the levels of gs that lie in 1..4, rounded to two
// decimals. It returns 0 when nothing qualifies; check len(gs) to tell "no
// data" apart from a genuine zero.
func AverageProficiency(gs []grades.StandardsGrade) float64 {
	return averageWithin(gs, classicMaxLevel)
}

// AverageProficiencyOn is AverageProficiency bounded by the scale's own
// highest level instead of 4.
func AverageProficiencyOn(gs []grades.StandardsGrade, s proficiency.Scale) float64 {
	return averageWithin(gs, s.Max())
}

func countWithin(gs []grades.StandardsGrade, max int) int {
	n := 0
	for _, g := range gs {
		if g.ProficiencyLevel >= 1 && g.ProficiencyLevel <= max {
			n++
		}
	}
	return n
}

func averageWithin(gs []grades.StandardsGrade, max int) float64 {
	sum, n := 0, 0
	for _, g := range gs {
		if g.ProficiencyLevel >= 1 && g.ProficiencyLevel <= max {
			sum += g.ProficiencyLevel
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return grading.Round2(float64(sum) / float64(n))
}

// LevelCount is one bucket of a proficiency distribution.
type LevelCount struct {
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
	Name       string `json:"name"`
}

// Distribution counts gs per level of s. Every level of the scale is present.
// Percentages are relative to len(gs), so out-of-scale grades lower them.
func Distribution(gs []grades.StandardsGrade, s proficiency.Scale) map[int]LevelCount {
	out := make(map[int]LevelCount, len(s.Levels))
	for _, l := range s.Levels {
		out[l.Level] = LevelCount{Name: l.Label}
	}
	if len(gs) == 0 {
		return out
	}
	for _, g := range gs {
		if lc, ok := out[g.ProficiencyLevel]; ok {
			lc.Count++
			out[g.ProficiencyLevel] = lc
		}
	}
	total := float64(len(gs))
	for lvl, lc := range out {
		lc.Percentage = int(math.Round(float64(lc.Count) / total * 100))
		out[lvl] = lc
	}
	return out
}

// MasteryResult summarises how many ratings reach the mastery threshold.
type MasteryResult struct {
	Level         string  `json:"level"`
	Average       float64 `json:"average"`
	MasteredCount int     `json:"count"`
	TotalCount    int     `json:"total"`
	Percentage    int     `json:"percentage"`
}

const NoData = "No Data"

// Mastery bands the average proficiency of gs and counts ratings at or above
// threshold. Empty input yields a "No Data" result with zero counts.
func Mastery(gs []grades.StandardsGrade, threshold float64) MasteryResult {
	if len(gs) == 0 {
		return MasteryResult{Level: NoData}
	}
	avg := AverageProficiency(gs)
	mastered := 0
	for _, g := range gs {
		if float64(g.ProficiencyLevel) >= threshold {
			mastered++
		}
	}
	return MasteryResult{
		Level:         MasteryLevelName(avg, threshold),
		Average:       avg,
		MasteredCount: mastered,
		TotalCount:    len(gs),
		Percentage:    int(math.Round(float64(mastered) / float64(len(gs)) * 100)),
	}
}

// MasteryLevelName bands an average proficiency.
func MasteryLevelName(avg, threshold float64) string {
	switch {
	case avg >= 3.8:
		return "Advanced Mastery"
	case avg >= 3.5:
		return "High Mastery"
	case avg >= threshold:
		return "Mastered"
	case avg >= threshold-0.5:
		return "Approaching Mastery"
	case avg >= 2.0:
		return "Developing"
	}
	return "Beginning"
}

// IsMastered reports whether a mastery band is at or above "Mastered".
func IsMastered(level string) bool {
	switch level {
	case "Mastered", "High Mastery", "Advanced Mastery":
		return true
	}
	return false
}
