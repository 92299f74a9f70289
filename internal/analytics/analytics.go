// Package analytics computes class and subject level views over traditional
// grades and standards ratings.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TraditionalAnalytics summarises percentage grades.
type TraditionalAnalytics struct {
	TotalGrades  int     `json:"total_grades"`
	AverageScore float64 `json:"average_score"`
	// GradeDistribution counts grades per ten point bucket (0, 10, ... 100).
	GradeDistribution map[int]int   `json:"grade_distribution"`
	ScoreRange        ScoreRange    `json:"score_range"`
	Statistics        grading.Stats `json:"statistics"`
	// LowGradeWarning is set when the average is so low that points were
	// probably entered where percentages were expected.
	LowGradeWarning bool `json:"low_grade_warning"`
}

// Traditional summarises gs using each grade's percentage.
func Traditional(gs []grades.TraditionalGrade) TraditionalAnalytics {
	out := TraditionalAnalytics{GradeDistribution: map[int]int{}}
	if len(gs) == 0 {
		out.Statistics = grading.ComputeStats(nil)
		return out
	}
	pcts := make([]float64, len(gs))
	sum := 0.0
	out.ScoreRange = ScoreRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for i, g := range gs {
		p := grading.PercentageOf(g)
		pcts[i] = p
		sum += p
		out.ScoreRange.Min = math.Min(out.ScoreRange.Min, p)
		out.ScoreRange.Max = math.Max(out.ScoreRange.Max, p)
		out.GradeDistribution[int(math.Floor(p/10))*10]++
	}
	out.TotalGrades = len(gs)
	out.AverageScore = grading.Round2(sum / float64(len(gs)))
	out.Statistics = grading.ComputeStats(pcts)
	out.LowGradeWarning = grading.LooksLikePointsAsPercentages(out.AverageScore, out.TotalGrades)
	return out
}

type StandardSummary struct {
	StandardID         string  `json:"standard_id"`
	StandardName       string  `json:"standard_name,omitempty"`
	TotalAssessments   int     `json:"total_assessments"`
	AverageProficiency float64 `json:"average_proficiency"`
}

// StandardsAnalytics summarises proficiency ratings.
type StandardsAnalytics struct {
	TotalStandards          int                        `json:"total_standards"`
	AverageProficiency      float64                    `json:"average_proficiency"`
	ProficiencyDistribution map[int]int                `json:"proficiency_distribution"`
	StandardsProgress       map[string]StandardSummary `json:"standards_progress"`
}

// Standards summarises gs overall and per standard. Unlike the mastery
// helpers it does not filter levels; every rating counts.
func Standards(gs []grades.StandardsGrade) StandardsAnalytics {
	out := StandardsAnalytics{
		ProficiencyDistribution: map[int]int{},
		StandardsProgress:       map[string]StandardSummary{},
	}
	if len(gs) == 0 {
		return out
	}
	totals := map[string]int{}
	sum := 0
	for _, g := range gs {
		sum += g.ProficiencyLevel
		out.ProficiencyDistribution[g.ProficiencyLevel]++
		s := out.StandardsProgress[g.StandardID]
		s.StandardID = g.StandardID
		if s.StandardName == "" {
			s.StandardName = g.StandardName
		}
		s.TotalAssessments++
		out.StandardsProgress[g.StandardID] = s
		totals[g.StandardID] += g.ProficiencyLevel
	}
	for id, s := range out.StandardsProgress {
		s.AverageProficiency = grading.Round2(float64(totals[id]) / float64(s.TotalAssessments))
		out.StandardsProgress[id] = s
	}
	out.TotalStandards = len(gs)
	out.AverageProficiency = grading.Round2(float64(sum) / float64(len(gs)))
	return out
}

type pairKey struct{ student, assignment string }

// Correlation is the Pearson coefficient between traditional percentages and
// the mean proficiency on the same (student, assignment). Only pairs of known
// students and assignments that have both kinds of grade take part. It is 0
// with fewer than two pairs or when either side has no variance.
func Correlation(trad []grades.TraditionalGrade, std []grades.StandardsGrade, assignments []grades.Assignment, students []grades.Student) float64 {
	if len(trad) == 0 || len(std) == 0 || len(assignments) == 0 || len(students) == 0 {
		return 0
	}
	knownStudent := make(map[string]bool, len(students))
	for _, s := range students {
		knownStudent[s.ID] = true
	}
	knownAssignment := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		knownAssignment[a.ID] = true
	}

	type acc struct {
		sum float64
		n   int
	}
	levels := map[pairKey]*acc{}
	for _, g := range std {
		k := pairKey{g.StudentID, g.AssignmentID}
		a := levels[k]
		if a == nil {
			a = &acc{}
			levels[k] = a
		}
		a.sum += float64(g.ProficiencyLevel)
		a.n++
	}

	var xs, ys []float64
	seen := map[pairKey]bool{}
	for _, g := range trad {
		k := pairKey{g.StudentID, g.AssignmentID}
		if seen[k] || !knownStudent[k.student] || !knownAssignment[k.assignment] {
			continue
		}
		a := levels[k]
		if a == nil {
			continue
		}
		seen[k] = true
		xs = append(xs, grading.PercentageOf(g))
		ys = append(ys, a.sum/float64(a.n))
	}
	if len(xs) < 2 {
		return 0
	}
	if _, vx := stat.PopMeanVariance(xs, nil); vx == 0 {
		return 0
	}
	if _, vy := stat.PopMeanVariance(ys, nil); vy == 0 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// Settings weights the two tracks for overall performance.
type Settings struct {
	TraditionalWeight float64               `json:"traditional_weight"`
	StandardsWeight   float64               `json:"standards_weight"`
	Scale             proficiency.ScaleType `json:"scale"`
}

// DefaultSettings is the dashboard default of 60% traditional, 40% standards.
func DefaultSettings() Settings {
	return Settings{TraditionalWeight: 0.6, StandardsWeight: 0.4, Scale: proficiency.DefaultScale}
}

type Performance struct {
	Score                   float64 `json:"score"`
	Grade                   string  `json:"grade"`
	TraditionalContribution float64 `json:"traditional_contribution"`
	StandardsContribution   float64 `json:"standards_contribution"`
}

// OverallPerformance blends the traditional average with the standards
// average converted to a percentage on the configured scale.
func OverallPerformance(t TraditionalAnalytics, s StandardsAnalytics, cfg Settings) (Performance, error) {
	if cfg.Scale == "" {
		cfg.Scale = proficiency.DefaultScale
	}
	conv, err := proficiency.PercentageFor(s.AverageProficiency, cfg.Scale)
	if err != nil {
		return Performance{}, err
	}
	trad := math.Min(100, math.Max(0, t.AverageScore)) * cfg.TraditionalWeight
	std := conv.Percentage * cfg.StandardsWeight
	score := trad + std
	return Performance{
		Score:                   grading.Round2(score),
		Grade:                   grading.LetterGrade(score),
		TraditionalContribution: grading.Round2(trad),
		StandardsContribution:   grading.Round2(std),
	}, nil
}

type Combined struct {
	OverallPerformance Performance `json:"overall_performance"`
	Correlation        float64     `json:"correlation"`
}

// Bundle is the full analytics view of a class or subject.
type Bundle struct {
	Traditional TraditionalAnalytics `json:"traditional"`
	Standards   StandardsAnalytics   `json:"standards"`
	Combined    Combined             `json:"combined"`
}

// Compute builds a Bundle. The only error is an unregistered scale in cfg.
func Compute(trad []grades.TraditionalGrade, std []grades.StandardsGrade, assignments []grades.Assignment, students []grades.Student, cfg Settings) (Bundle, error) {
	t := Traditional(trad)
	s := Standards(std)
	perf, err := OverallPerformance(t, s, cfg)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Traditional: t,
		Standards:   s,
		Combined: Combined{
			OverallPerformance: perf,
			Correlation:        grading.Round3(Correlation(trad, std, assignments, students)),
		},
	}, nil
}

// FilterSubject keeps the grades of assignments in subject. An empty subject
// keeps everything.
func FilterSubject(subject string, assignments []grades.Assignment, trad []grades.TraditionalGrade, std []grades.StandardsGrade) ([]grades.Assignment, []grades.TraditionalGrade, []grades.StandardsGrade) {
	if subject == "" {
		return assignments, trad, std
	}
	keep := map[string]bool{}
	var as []grades.Assignment
	for _, a := range assignments {
		if a.Subject == subject {
			keep[a.ID] = true
			as = append(as, a)
		}
	}
	var ts []grades.TraditionalGrade
	for _, g := range trad {
		if keep[g.AssignmentID] {
			ts = append(ts, g)
		}
	}
	var ss []grades.StandardsGrade
	for _, g := range std {
		if keep[g.AssignmentID] {
			ss = append(ss, g)
		}
	}
	return as, ts, ss
}
