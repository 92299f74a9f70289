package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

func TestTraditionalEmpty(t *testing.T) {
	got := Traditional(nil)
	assert.Equal(t, 0, got.TotalGrades)
	assert.Equal(t, 0.0, got.AverageScore)
	assert.Empty(t, got.GradeDistribution)
	assert.Equal(t, ScoreRange{Min: 0, Max: 0}, got.ScoreRange)
	assert.False(t, got.LowGradeWarning)
}

func TestTraditional(t *testing.T) {
	gs := []grades.TraditionalGrade{
		{Score: 9, Points: 10},
		{Score: 95, Points: 100},
		{Score: 7.5, Points: 10},
		{Score: 10, Points: 10},
	}
	got := Traditional(gs)
	assert.Equal(t, 4, got.TotalGrades)
	assert.Equal(t, 90.0, got.AverageScore)
	assert.Equal(t, map[int]int{70: 1, 90: 2, 100: 1}, got.GradeDistribution)
	assert.Equal(t, ScoreRange{Min: 75, Max: 100}, got.ScoreRange)
	assert.Equal(t, 92.5, got.Statistics.Median)
	assert.False(t, got.LowGradeWarning)
}

func TestTraditionalLowGradeWarning(t *testing.T) {
	// points typed into the percentage field
	got := Traditional([]grades.TraditionalGrade{{Percentage: 8}, {Percentage: 9}})
	assert.True(t, got.LowGradeWarning)
}

func TestStandards(t *testing.T) {
	assert.Equal(t, StandardsAnalytics{
		ProficiencyDistribution: map[int]int{},
		StandardsProgress:       map[string]StandardSummary{},
	}, Standards(nil))

	got := Standards([]grades.StandardsGrade{
		{StandardID: "RL.1", StandardName: "Key ideas", ProficiencyLevel: 3},
		{StandardID: "RL.1", ProficiencyLevel: 4},
		{StandardID: "W.2", StandardName: "Informative writing", ProficiencyLevel: 2},
	})
	assert.Equal(t, 3, got.TotalStandards)
	assert.Equal(t, 3.0, got.AverageProficiency)
	assert.Equal(t, map[int]int{2: 1, 3: 1, 4: 1}, got.ProficiencyDistribution)
	require.Len(t, got.StandardsProgress, 2)
	assert.Equal(t, StandardSummary{StandardID: "RL.1", StandardName: "Key ideas", TotalAssessments: 2, AverageProficiency: 3.5}, got.StandardsProgress["RL.1"])
	assert.Equal(t, 2.0, got.StandardsProgress["W.2"].AverageProficiency)
}

type fixture struct {
	students    []grades.Student
	assignments []grades.Assignment
	trad        []grades.TraditionalGrade
	std         []grades.StandardsGrade
}

func correlated() fixture {
	f := fixture{
		students:    []grades.Student{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		assignments: []grades.Assignment{{ID: "a1", Points: 10}},
	}
	for i, s := range f.students {
		f.trad = append(f.trad, grades.TraditionalGrade{StudentID: s.ID, AssignmentID: "a1", Score: float64(6 + 2*i), Points: 10})
		f.std = append(f.std, grades.StandardsGrade{StudentID: s.ID, AssignmentID: "a1", StandardID: "X", ProficiencyLevel: 2 + i})
	}
	return f
}

func TestCorrelationPerfect(t *testing.T) {
	f := correlated()
	assert.InDelta(t, 1.0, Correlation(f.trad, f.std, f.assignments, f.students), 1e-9)

	for i := range f.std {
		f.std[i].ProficiencyLevel = 4 - i
	}
	assert.InDelta(t, -1.0, Correlation(f.trad, f.std, f.assignments, f.students), 1e-9)
}

func TestCorrelationGuards(t *testing.T) {
	f := correlated()
	assert.Equal(t, 0.0, Correlation(f.trad[:1], f.std[:1], f.assignments, f.students), "single pair")
	assert.Equal(t, 0.0, Correlation(f.trad, f.std, nil, f.students), "no assignments")
	assert.Equal(t, 0.0, Correlation(f.trad, f.std, f.assignments, []grades.Student{{ID: "s1"}}), "one known student")

	for i := range f.std {
		f.std[i].ProficiencyLevel = 3
	}
	assert.Equal(t, 0.0, Correlation(f.trad, f.std, f.assignments, f.students), "no variance")
}

func TestCorrelationBounds(t *testing.T) {
	f := correlated()
	f.std = append(f.std,
		grades.StandardsGrade{StudentID: "s1", AssignmentID: "a1", ProficiencyLevel: 4},
		grades.StandardsGrade{StudentID: "s3", AssignmentID: "a1", ProficiencyLevel: 1},
	)
	r := Correlation(f.trad, f.std, f.assignments, f.students)
	assert.GreaterOrEqual(t, r, -1.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestOverallPerformance(t *testing.T) {
	ta := TraditionalAnalytics{AverageScore: 80}
	sa := StandardsAnalytics{AverageProficiency: 3}
	got, err := OverallPerformance(ta, sa, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 48.0, got.TraditionalContribution)
	assert.Equal(t, 34.0, got.StandardsContribution)
	assert.Equal(t, 82.0, got.Score)
	assert.Equal(t, "B-", got.Grade)

	_, err = OverallPerformance(ta, sa, Settings{TraditionalWeight: 1, Scale: "nine_point"})
	assert.ErrorIs(t, err, proficiency.ErrUnknownScale)
}

func TestCompute(t *testing.T) {
	f := correlated()
	b, err := Compute(f.trad, f.std, f.assignments, f.students, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 3, b.Traditional.TotalGrades)
	assert.Equal(t, 3, b.Standards.TotalStandards)
	assert.Equal(t, 1.0, b.Combined.Correlation)
	assert.NotEmpty(t, b.Combined.OverallPerformance.Grade)
}

func TestFilterSubject(t *testing.T) {
	as := []grades.Assignment{{ID: "m1", Subject: "Math"}, {ID: "e1", Subject: "English"}}
	trad := []grades.TraditionalGrade{{AssignmentID: "m1"}, {AssignmentID: "e1"}}
	std := []grades.StandardsGrade{{AssignmentID: "e1"}}

	a2, t2, s2 := FilterSubject("Math", as, trad, std)
	assert.Len(t, a2, 1)
	assert.Len(t, t2, 1)
	assert.Empty(t, s2)

	a3, t3, s3 := FilterSubject("", as, trad, std)
	assert.Len(t, a3, 2)
	assert.Len(t, t3, 2)
	assert.Len(t, s3, 1)
}
