package standards

import (
	"fmt"
	"sort"
	"time"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// StandardProgress is one standard's slice of a student progress report.
type StandardProgress struct {
	StandardID       string                  `json:"standard_id"`
	StandardName     string                  `json:"standard_name,omitempty"`
	Grades           []grades.StandardsGrade `json:"grades"`
	Trend            ProgressTrend           `json:"trend"`
	Mastery          MasteryResult           `json:"mastery"`
	AssignmentsCount int                     `json:"assignments_count"`
	FirstGrade       *grades.StandardsGrade  `json:"first_grade,omitempty"`
	LatestGrade      *grades.StandardsGrade  `json:"latest_grade,omitempty"`
}

type OverallProgress struct {
	TotalStandards     int                `json:"total_standards"`
	MasteredStandards  int                `json:"mastered_standards"`
	AverageProficiency float64            `json:"average_proficiency"`
	Trend              OverallTrendResult `json:"trend"`
	Recommendations    []Recommendation   `json:"recommendations"`
}

// ProgressReport is the standards progress of one student.
type ProgressReport struct {
	StudentID  string             `json:"student_id"`
	StandardID string             `json:"standard_id,omitempty"`
	From       *time.Time         `json:"from,omitempty"`
	To         *time.Time         `json:"to,omitempty"`
	Standards  []StandardProgress `json:"progress_data"`
	Overall    OverallProgress    `json:"overall_progress"`
}

// ProgressOptions narrows a progress report. Zero values mean no filter and
// DefaultMasteryThreshold.
type ProgressOptions struct {
	StandardID string
	From, To   time.Time
	Threshold  float64
}

// Progress builds the progress report of studentID from all ratings in gs.
// Standards are listed in ID order.
func Progress(studentID string, gs []grades.StandardsGrade, opt ProgressOptions) ProgressReport {
	threshold := opt.Threshold
	if threshold <= 0 {
		threshold = DefaultMasteryThreshold
	}
	var filtered []grades.StandardsGrade
	for _, g := range gs {
		if g.StudentID != studentID {
			continue
		}
		if opt.StandardID != "" && g.StandardID != opt.StandardID {
			continue
		}
		if !opt.From.IsZero() && !opt.To.IsZero() && !(g.Date.After(opt.From) && g.Date.Before(opt.To)) {
			continue
		}
		filtered = append(filtered, g)
	}

	byStandard := map[string][]grades.StandardsGrade{}
	for _, g := range filtered {
		byStandard[g.StandardID] = append(byStandard[g.StandardID], g)
	}
	ids := make([]string, 0, len(byStandard))
	for id := range byStandard {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]StandardProgress, 0, len(ids))
	for _, id := range ids {
		sorted := SortByDate(byStandard[id])
		first, latest := sorted[0], sorted[len(sorted)-1]
		items = append(items, StandardProgress{
			StandardID:       id,
			StandardName:     latest.StandardName,
			Grades:           sorted,
			Trend:            Trend(sorted),
			Mastery:          Mastery(sorted, threshold),
			AssignmentsCount: len(sorted),
			FirstGrade:       &first,
			LatestGrade:      &latest,
		})
	}

	mastered := 0
	for _, p := range items {
		if IsMastered(p.Mastery.Level) {
			mastered++
		}
	}
	rep := ProgressReport{
		StudentID:  studentID,
		StandardID: opt.StandardID,
		Standards:  items,
		Overall: OverallProgress{
			TotalStandards:     len(items),
			MasteredStandards:  mastered,
			AverageProficiency: AverageProficiency(filtered),
			Trend:              OverallTrend(items),
			Recommendations:    Recommendations(items),
		},
	}
	if !opt.From.IsZero() && !opt.To.IsZero() {
		from, to := opt.From, opt.To
		rep.From, rep.To = &from, &to
	}
	return rep
}

type RecommendationType string

const (
	Intervention RecommendationType = "intervention"
	Advancement  RecommendationType = "advancement"
	General      RecommendationType = "general"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is a labelled suggestion for the teacher. Priority is a
// label only; recommendations carry no score.
type Recommendation struct {
	Type      RecommendationType `json:"type"`
	Priority  Priority           `json:"priority"`
	Message   string             `json:"message"`
	Standards []string           `json:"standards,omitempty"`
}

// Recommendations derives intervention, advancement and general notes from
// per-standard progress, in that order.
func Recommendations(progress []StandardProgress) []Recommendation {
	out := []Recommendation{}
	if len(progress) == 0 {
		return out
	}

	var struggling, strong []string
	sum := 0.0
	for _, p := range progress {
		sum += p.Mastery.Average
		if p.Mastery.Average < 2.5 || p.Trend.Direction == Declining {
			struggling = append(struggling, p.StandardID)
		}
		if p.Mastery.Average >= 3.5 && p.Trend.Direction == Improving {
			strong = append(strong, p.StandardID)
		}
	}
	if len(struggling) > 0 {
		out = append(out, Recommendation{
			Type:      Intervention,
			Priority:  PriorityHigh,
			Message:   fmt.Sprintf("%d standard(s) need additional support", len(struggling)),
			Standards: struggling,
		})
	}
	if len(strong) > 0 {
		out = append(out, Recommendation{
			Type:      Advancement,
			Priority:  PriorityMedium,
			Message:   fmt.Sprintf("%d standard(s) show strong mastery", len(strong)),
			Standards: strong,
		})
	}

	switch avg := sum / float64(len(progress)); {
	case avg < 2.0:
		out = append(out, Recommendation{Type: General, Priority: PriorityHigh,
			Message: "Overall performance indicates need for foundational review"})
	case avg > 3.5:
		out = append(out, Recommendation{Type: General, Priority: PriorityLow,
			Message: "Strong overall performance - consider enrichment activities"})
	}
	return out
}
