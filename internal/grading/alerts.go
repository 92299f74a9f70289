package grading

import (
	"math"
	"sort"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// LowGradeThreshold is the subject average below which a student is flagged.
const LowGradeThreshold = 70.0

type LowGradeAlert struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Subject   string  `json:"subject"`
	Average   float64 `json:"average"`
}

// LowGradeAlerts flags every (student, subject) whose mean percentage is below
// threshold. Results are ordered by student name, then subject.
func LowGradeAlerts(students []grades.Student, gs []grades.TraditionalGrade, threshold float64) []LowGradeAlert {
	type acc struct {
		sum float64
		n   int
	}
	bySubject := map[string]map[string]*acc{}
	for _, g := range gs {
		m := bySubject[g.StudentID]
		if m == nil {
			m = map[string]*acc{}
			bySubject[g.StudentID] = m
		}
		a := m[g.Subject]
		if a == nil {
			a = &acc{}
			m[g.Subject] = a
		}
		a.sum += PercentageOf(g)
		a.n++
	}

	out := []LowGradeAlert{}
	for _, s := range students {
		for subject, a := range bySubject[s.ID] {
			avg := a.sum / float64(a.n)
			if avg < threshold {
				out = append(out, LowGradeAlert{
					StudentID: s.ID,
					Name:      s.Name(),
					Subject:   subject,
					Average:   math.Round(avg),
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}
