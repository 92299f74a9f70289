// Package grades holds the gradebook records shared by the scoring engine and
// the stores. Every computed result is a pure function of these collections.
package grades

import "time"

// TraditionalGrade is a points-based grade for one student on one assignment.
type TraditionalGrade struct {
	ID           string    `json:"id,omitempty"`
	StudentID    string    `json:"student_id" validate:"notblank"`
	AssignmentID string    `json:"assignment_id" validate:"notblank"`
	Subject      string    `json:"subject,omitempty"`
	Score        float64   `json:"score"`
	Points       float64   `json:"points" validate:"gt=0"`
	Percentage   float64   `json:"percentage"`
	DateEntered  time.Time `json:"date_entered"`
}

// StandardsGrade is a proficiency rating for one student on one standard as
// assessed by one assignment.
type StandardsGrade struct {
	ID               string    `json:"id,omitempty"`
	StudentID        string    `json:"student_id" validate:"notblank"`
	AssignmentID     string    `json:"assignment_id" validate:"notblank"`
	StandardID       string    `json:"standard_id" validate:"notblank"`
	StandardName     string    `json:"standard_name,omitempty"`
	ProficiencyLevel int       `json:"proficiency_level" validate:"gte=1"`
	Date             time.Time `json:"date"`
}

type CoverageType string

const (
	CoverageFull       CoverageType = "full"
	CoveragePartial    CoverageType = "partial"
	CoverageSupporting CoverageType = "supporting"
)

// StandardMapping links an assignment to a standard. Weight and
// AlignmentStrength are recorded but not used by any scoring formula.
type StandardMapping struct {
	ID                string       `json:"id,omitempty"`
	AssignmentID      string       `json:"assignment_id" validate:"notblank"`
	StandardID        string       `json:"standard_id" validate:"notblank"`
	AlignmentStrength float64      `json:"alignment_strength" validate:"gte=0,lte=1"`
	CoverageType      CoverageType `json:"coverage_type" validate:"omitempty,oneof=full partial supporting"`
	Weight            float64      `json:"weight" validate:"gte=0"`
}

// Assignment is the subset of assignment fields the engine reads.
type Assignment struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name,omitempty" validate:"notblank"`
	Points                 float64 `json:"points" validate:"gt=0"`
	Subject                string  `json:"subject,omitempty"`
	Category               string  `json:"category,omitempty"`
	HasStandardsAssessment bool    `json:"has_standards_assessment"`
	ProficiencyScale       string  `json:"proficiency_scale,omitempty"`
}

type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name"`
}

// Name is "First Last" with surrounding blanks trimmed.
func (s Student) Name() string {
	switch {
	case s.LastName == "":
		return s.FirstName
	case s.FirstName == "":
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}
