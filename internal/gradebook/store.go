// Package gradebook persists assignments, students and grades, and serves the
// computed views (composites, progress reports, class analytics) over them.
package gradebook

import (
	"context"
	"errors"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

var ErrNotFound = errors.New("not found")

// Filter narrows grade listings; empty fields match everything.
type Filter struct {
	StudentID    string
	AssignmentID string
	StandardID   string
}

func (f Filter) matches(studentID, assignmentID, standardID string) bool {
	return (f.StudentID == "" || f.StudentID == studentID) &&
		(f.AssignmentID == "" || f.AssignmentID == assignmentID) &&
		(f.StandardID == "" || f.StandardID == standardID)
}

// Store is the document store behind the gradebook. Puts are upserts: a grade
// for the same student and assignment (and standard) replaces the old one.
type Store interface {
	PutAssignment(ctx context.Context, a grades.Assignment) error
	GetAssignment(ctx context.Context, id string) (grades.Assignment, error)
	ListAssignments(ctx context.Context) ([]grades.Assignment, error)

	PutStudent(ctx context.Context, s grades.Student) error
	ListStudents(ctx context.Context) ([]grades.Student, error)

	PutTraditionalGrade(ctx context.Context, g grades.TraditionalGrade) error
	ListTraditionalGrades(ctx context.Context, f Filter) ([]grades.TraditionalGrade, error)

	PutStandardsGrade(ctx context.Context, g grades.StandardsGrade) error
	// ListStandardsGrades returns ratings oldest first.
	ListStandardsGrades(ctx context.Context, f Filter) ([]grades.StandardsGrade, error)

	PutStandardMapping(ctx context.Context, m grades.StandardMapping) error
	ListStandardMappings(ctx context.Context, assignmentID string) ([]grades.StandardMapping, error)
}
