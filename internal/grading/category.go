package grading

import (
	"fmt"
	"math"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// Rounding selects how category and final grades are rounded.
type Rounding string

const (
	NearestWhole     Rounding = "nearest_whole"
	RoundUp          Rounding = "round_up"
	RoundDown        Rounding = "round_down"
	NearestTenth     Rounding = "nearest_tenth"
	NearestHundredth Rounding = "nearest_hundredth"
)

// ApplyRounding rounds v with the given method; unknown methods round to the
// nearest whole number.
func ApplyRounding(v float64, m Rounding) float64 {
	switch m {
	case RoundUp:
		return math.Ceil(v)
	case RoundDown:
		return math.Floor(v)
	case NearestTenth:
		return math.Round(v*10) / 10
	case NearestHundredth:
		return math.Round(v*100) / 100
	default:
		return math.Round(v)
	}
}

// Category is a weighted assignment category of a gradebook. Weight is a
// percentage (categories of a book normally sum to 100).
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Weight   float64  `json:"weight" yaml:"weight"`
	Rounding Rounding `json:"rounding_method,omitempty" yaml:"rounding_method,omitempty"`
}

// Book is the category configuration of one gradebook.
type Book struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Rounding   Rounding   `json:"rounding_method,omitempty" yaml:"rounding_method,omitempty"`
}

type CategoryResult struct {
	Category             string  `json:"category"`
	Weight               float64 `json:"weight"`
	Average              float64 `json:"average"`
	TotalPoints          float64 `json:"total_points"`
	EarnedPoints         float64 `json:"earned_points"`
	Count                int     `json:"count"`
	TotalAssignments     int     `json:"total_assignments"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

type FinalGrade struct {
	FinalGrade  float64          `json:"final_grade"`
	LetterGrade string           `json:"letter_grade"`
	Breakdown   []CategoryResult `json:"category_breakdown"`
	TotalWeight float64          `json:"total_weight"`
	WeightedSum float64          `json:"weighted_sum"`
}

// CategoryAverage is the points-weighted average of gs within one category:
// earned points over possible points of the graded assignments. Grades whose
// assignment is unknown are counted but contribute no points.
func CategoryAverage(gs []grades.TraditionalGrade, assignments map[string]grades.Assignment, c Category) CategoryResult {
	res := CategoryResult{Category: c.Name, Weight: c.Weight, TotalAssignments: len(gs)}
	for _, g := range gs {
		res.Count++
		a, ok := assignments[g.AssignmentID]
		if !ok || a.Points <= 0 {
			continue
		}
		res.TotalPoints += a.Points
		res.EarnedPoints += PercentageOf(g) / 100 * a.Points
	}
	if res.TotalPoints > 0 {
		res.Average = ApplyRounding(res.EarnedPoints/res.TotalPoints*100, c.Rounding)
	}
	res.WeightedContribution = res.Average * c.Weight / 100
	return res
}

// ComputeFinalGrade combines the category averages of one student's grades
// into a weighted final grade. A book without categories yields 0 and "N/A".
func ComputeFinalGrade(book Book, gs []grades.TraditionalGrade, assignments []grades.Assignment) FinalGrade {
	if len(book.Categories) == 0 {
		return FinalGrade{LetterGrade: "N/A", Breakdown: []CategoryResult{}}
	}
	byID := IndexAssignments(assignments)
	byCategory := map[string][]grades.TraditionalGrade{}
	for _, g := range gs {
		if a, ok := byID[g.AssignmentID]; ok {
			byCategory[a.Category] = append(byCategory[a.Category], g)
		}
	}

	out := FinalGrade{Breakdown: make([]CategoryResult, 0, len(book.Categories))}
	for _, c := range book.Categories {
		cr := CategoryAverage(byCategory[c.Name], byID, c)
		out.Breakdown = append(out.Breakdown, cr)
		out.TotalWeight += c.Weight
		out.WeightedSum += cr.WeightedContribution
	}
	if out.TotalWeight > 0 {
		out.FinalGrade = ApplyRounding(out.WeightedSum/out.TotalWeight*100, book.Rounding)
	}
	out.LetterGrade = LetterGrade(out.FinalGrade)
	return out
}

// ValidateBook reports configuration problems (errors) and suspicious but
// usable settings (warnings).
func ValidateBook(book Book) (problems, warnings []string) {
	if len(book.Categories) == 0 {
		problems = append(problems, "no categories defined for gradebook")
		return problems, warnings
	}
	total := 0.0
	seen := map[string]bool{}
	for _, c := range book.Categories {
		total += c.Weight
		if seen[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate category name %q", c.Name))
		}
		seen[c.Name] = true
	}
	switch {
	case total == 0:
		warnings = append(warnings, "all category weights are 0")
	case math.Abs(total-100) > 0.01:
		warnings = append(warnings, fmt.Sprintf("category weights sum to %g%% instead of 100%%", total))
	}
	return problems, warnings
}

// IndexAssignments keys assignments by ID.
func IndexAssignments(as []grades.Assignment) map[string]grades.Assignment {
	m := make(map[string]grades.Assignment, len(as))
	for _, a := range as {
		m[a.ID] = a
	}
	return m
}
