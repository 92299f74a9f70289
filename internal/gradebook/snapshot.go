package gradebook

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
)

// Snapshot is a full gradebook export.
type Snapshot struct {
	Assignments       []grades.Assignment       `json:"assignments"`
	Students          []grades.Student          `json:"students"`
	StandardMappings  []grades.StandardMapping  `json:"standard_mappings"`
	TraditionalGrades []grades.TraditionalGrade `json:"traditional_grades"`
	StandardsGrades   []grades.StandardsGrade   `json:"standards_grades"`
}

type ImportOptions struct {
	// LegacyScores resolves each traditional grade's score with
	// grading.ClassifyStoredScore before recording it. Set it for exports
	// written before scores were always stored as points.
	LegacyScores bool
}

type ImportSummary struct {
	Assignments       int `json:"assignments"`
	Students          int `json:"students"`
	StandardMappings  int `json:"standard_mappings"`
	TraditionalGrades int `json:"traditional_grades"`
	StandardsGrades   int `json:"standards_grades"`
	// Reinterpreted counts legacy scores that were read as percentages.
	Reinterpreted int `json:"reinterpreted"`
}

// Import loads snap through the regular write path, so every record is
// validated. It stops at the first rejected record.
func (s *Service) Import(ctx context.Context, snap Snapshot, opt ImportOptions) (ImportSummary, error) {
	var sum ImportSummary
	for i, a := range snap.Assignments {
		if _, err := s.PutAssignment(ctx, a); err != nil {
			return sum, fmt.Errorf("assignments[%d]: %w", i, err)
		}
		sum.Assignments++
	}
	for i, st := range snap.Students {
		if _, err := s.PutStudent(ctx, st); err != nil {
			return sum, fmt.Errorf("students[%d]: %w", i, err)
		}
		sum.Students++
	}
	for i, m := range snap.StandardMappings {
		if _, err := s.MapStandard(ctx, m); err != nil {
			return sum, fmt.Errorf("standard_mappings[%d]: %w", i, err)
		}
		sum.StandardMappings++
	}
	for i, g := range snap.TraditionalGrades {
		if opt.LegacyScores {
			a, err := s.assignment(ctx, g.AssignmentID)
			if err != nil {
				return sum, fmt.Errorf("traditional_grades[%d]: %w", i, err)
			}
			sc, err := grading.ClassifyStoredScore(g.Score, a.Points)
			if err != nil {
				return sum, fmt.Errorf("traditional_grades[%d]: %w", i, err)
			}
			if sc.Shape == grading.ShapePercentage {
				sum.Reinterpreted++
			}
			g.Score, g.Points = sc.Points, a.Points
		}
		if _, err := s.RecordGrade(ctx, g); err != nil {
			return sum, fmt.Errorf("traditional_grades[%d]: %w", i, err)
		}
		sum.TraditionalGrades++
	}
	for i, g := range snap.StandardsGrades {
		if _, err := s.RecordStandardsGrade(ctx, g); err != nil {
			return sum, fmt.Errorf("standards_grades[%d]: %w", i, err)
		}
		sum.StandardsGrades++
	}
	if sum.Reinterpreted > 0 {
		s.log.Info("legacy scores read as percentages", "count", sum.Reinterpreted)
	}
	return sum, nil
}

// Export reads the whole gradebook back out.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Assignments, err = s.store.ListAssignments(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Students, err = s.store.ListStudents(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.StandardMappings, err = s.store.ListStandardMappings(ctx, ""); err != nil {
		return Snapshot{}, err
	}
	if snap.TraditionalGrades, err = s.store.ListTraditionalGrades(ctx, Filter{}); err != nil {
		return Snapshot{}, err
	}
	if snap.StandardsGrades, err = s.store.ListStandardsGrades(ctx, Filter{}); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
