package gradebook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

func sampleSnapshot() gradebook.Snapshot {
	return gradebook.Snapshot{
		Assignments: []grades.Assignment{
			{ID: "a1", Name: "Fractions quiz", Points: 5, Subject: "Math"},
		},
		Students: []grades.Student{
			{ID: "s1", FirstName: "Ada"},
			{ID: "s2", FirstName: "Ben"},
		},
		StandardMappings: []grades.StandardMapping{
			{AssignmentID: "a1", StandardID: "NF.1", AlignmentStrength: 1},
		},
		TraditionalGrades: []grades.TraditionalGrade{
			{StudentID: "s1", AssignmentID: "a1", Score: 4},
			{StudentID: "s2", AssignmentID: "a1", Score: 80},
		},
		StandardsGrades: []grades.StandardsGrade{
			{StudentID: "s1", AssignmentID: "a1", StandardID: "NF.1", ProficiencyLevel: 3},
		},
	}
}

func TestImportLegacyScores(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sum, err := svc.Import(ctx, sampleSnapshot(), gradebook.ImportOptions{LegacyScores: true})
	require.NoError(t, err)
	assert.Equal(t, gradebook.ImportSummary{
		Assignments: 1, Students: 2, StandardMappings: 1, TraditionalGrades: 2, StandardsGrades: 1, Reinterpreted: 1,
	}, sum)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	pcts := map[string]float64{}
	for _, g := range snap.TraditionalGrades {
		pcts[g.StudentID] = g.Percentage
	}
	assert.Equal(t, 80.0, pcts["s1"])
	assert.Equal(t, 80.0, pcts["s2"])
	require.Len(t, snap.StandardMappings, 1)
}

func TestImportWithoutLegacyClampsScores(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, sampleSnapshot(), gradebook.ImportOptions{})
	require.NoError(t, err)
	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	for _, g := range snap.TraditionalGrades {
		if g.StudentID == "s2" {
			// 80 points on a 5 point assignment is clamped to full marks
			assert.Equal(t, 100.0, g.Percentage)
		}
	}
}

func TestImportStopsAtFirstBadRecord(t *testing.T) {
	svc, _, _ := newService(t)
	snap := sampleSnapshot()
	snap.StandardsGrades[0].ProficiencyLevel = 9

	sum, err := svc.Import(context.Background(), snap, gradebook.ImportOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, gradebook.ErrInvalid)
	assert.Contains(t, err.Error(), "standards_grades[0]")
	assert.Equal(t, 2, sum.TraditionalGrades)
	assert.Equal(t, 0, sum.StandardsGrades)
}
