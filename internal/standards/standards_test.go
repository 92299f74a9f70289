package standards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

func levels(ls ...int) []grades.StandardsGrade {
	base := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	out := make([]grades.StandardsGrade, len(ls))
	for i, l := range ls {
		out[i] = grades.StandardsGrade{
			StudentID:        "s1",
			AssignmentID:     "a1",
			StandardID:       "RL.1",
			ProficiencyLevel: l,
			Date:             base.AddDate(0, 0, i*7),
		}
	}
	return out
}

func fourPoint(t *testing.T) proficiency.Scale {
	t.Helper()
	s, err := proficiency.Default().Lookup(proficiency.FourPoint)
	require.NoError(t, err)
	return s
}

func TestAverageProficiency(t *testing.T) {
	assert.Equal(t, 0.0, AverageProficiency(nil))
	assert.Equal(t, 3.5, AverageProficiency(levels(3, 4)))
	assert.Equal(t, 2.33, AverageProficiency(levels(1, 2, 4)))
	// 0 and 5 fall outside 1..4 and are dropped
	assert.Equal(t, 2.0, AverageProficiency(levels(0, 2, 5)))
	assert.Equal(t, 0.0, AverageProficiency(levels(5, 5)))
}

func TestAverageProficiencyOnFivePoint(t *testing.T) {
	five, err := proficiency.Default().Lookup(proficiency.FivePoint)
	require.NoError(t, err)
	assert.Equal(t, 4.0, AverageProficiencyOn(levels(3, 5), five))
	assert.Equal(t, 3.0, AverageProficiency(levels(3, 5)))
}

func TestDistribution(t *testing.T) {
	got := Distribution(levels(1, 1, 2, 3, 4, 4, 4), fourPoint(t))
	require.Len(t, got, 4)
	assert.Equal(t, LevelCount{Count: 2, Percentage: 29, Name: "Novice"}, got[1])
	assert.Equal(t, LevelCount{Count: 1, Percentage: 14, Name: "Developing"}, got[2])
	assert.Equal(t, LevelCount{Count: 1, Percentage: 14, Name: "Proficient"}, got[3])
	assert.Equal(t, LevelCount{Count: 3, Percentage: 43, Name: "Advanced"}, got[4])
}

func TestDistributionEmptyHasEveryLevel(t *testing.T) {
	got := Distribution(nil, fourPoint(t))
	require.Len(t, got, 4)
	for lvl, lc := range got {
		assert.Zero(t, lc.Count, "level %d", lvl)
		assert.Zero(t, lc.Percentage, "level %d", lvl)
	}
}

func TestMastery(t *testing.T) {
	assert.Equal(t, MasteryResult{Level: NoData}, Mastery(nil, DefaultMasteryThreshold))

	m := Mastery(levels(2, 3, 4, 4), DefaultMasteryThreshold)
	assert.Equal(t, 3.25, m.Average)
	assert.Equal(t, 3, m.MasteredCount)
	assert.Equal(t, 4, m.TotalCount)
	assert.Equal(t, 75, m.Percentage)
	assert.Equal(t, "Mastered", m.Level)
}

func TestMasteryLevelName(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{4, "Advanced Mastery"},
		{3.8, "Advanced Mastery"},
		{3.5, "High Mastery"},
		{3.0, "Mastered"},
		{2.5, "Approaching Mastery"},
		{2.0, "Developing"},
		{1.99, "Beginning"},
		{0, "Beginning"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MasteryLevelName(tc.avg, DefaultMasteryThreshold), "avg=%v", tc.avg)
	}
	assert.Equal(t, "Approaching Mastery", MasteryLevelName(3.0, 3.4))
}

func TestTrend(t *testing.T) {
	t.Run("single point is stable", func(t *testing.T) {
		assert.Equal(t, ProgressTrend{Direction: Stable, Consistency: 1}, Trend(levels(2)))
	})
	t.Run("increasing", func(t *testing.T) {
		tr := Trend(levels(1, 2, 3, 4))
		assert.Equal(t, Improving, tr.Direction)
		assert.Equal(t, 1.0, tr.Slope)
		assert.Equal(t, 3.0, tr.Improvement)
		// population stddev of 1..4 is sqrt(1.25)
		assert.Equal(t, 0.44, tr.Consistency)
	})
	t.Run("constant", func(t *testing.T) {
		tr := Trend(levels(3, 3, 3, 3))
		assert.Equal(t, Stable, tr.Direction)
		assert.Equal(t, 0.0, tr.Slope)
		assert.Equal(t, 1.0, tr.Consistency)
	})
	t.Run("declining", func(t *testing.T) {
		tr := Trend(levels(4, 2))
		assert.Equal(t, Declining, tr.Direction)
		assert.Equal(t, -2.0, tr.Slope)
		assert.Equal(t, -2.0, tr.Improvement)
		assert.Equal(t, 0.5, tr.Consistency)
	})
	t.Run("net zero with movement", func(t *testing.T) {
		tr := Trend(levels(2, 4, 2))
		assert.Equal(t, Stable, tr.Direction)
		assert.Equal(t, 0.0, tr.Slope)
	})
}

func TestOverallTrendDeadBand(t *testing.T) {
	mk := func(imps ...float64) []StandardProgress {
		out := make([]StandardProgress, len(imps))
		for i, v := range imps {
			out[i].Trend.Improvement = v
		}
		return out
	}
	assert.Equal(t, OverallTrendResult{Direction: Stable}, OverallTrend(nil))
	assert.Equal(t, Stable, OverallTrend(mk(0.1, 0.1)).Direction)
	assert.Equal(t, Improving, OverallTrend(mk(1, 0)).Direction)
	assert.Equal(t, Declining, OverallTrend(mk(-1, 0.5)).Direction)

	got := OverallTrend(mk(1, 0, -1, 2))
	assert.Equal(t, 0.5, got.AverageImprovement)
	assert.Equal(t, 2, got.ImprovingStandards)
	assert.Equal(t, 4, got.TotalStandards)
	assert.Equal(t, 50, got.ImprovementPercentage)
}

func TestSortByDateDoesNotMutate(t *testing.T) {
	in := levels(1, 2, 3)
	in[0], in[2] = in[2], in[0]
	out := SortByDate(in)
	assert.Equal(t, 1, out[0].ProficiencyLevel)
	assert.Equal(t, 3, out[2].ProficiencyLevel)
	assert.Equal(t, 3, in[0].ProficiencyLevel)
}

func TestCompositeScenario(t *testing.T) {
	trad := &grades.TraditionalGrade{Score: 8, Points: 10}
	got, err := Composite(trad, levels(3, 4), DefaultWeights(), proficiency.FourPoint)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.TraditionalScore)
	assert.Equal(t, 92.5, got.StandardsScore)
	assert.Equal(t, 86.25, got.CompositeScore)
	assert.Equal(t, "B", got.LetterGrade)
	assert.Equal(t, proficiency.Interpolated, got.StandardsConversion)
	assert.Equal(t, Breakdown{TraditionalWeight: 0.5, StandardsWeight: 0.5, StandardsCount: 2, StandardsAverage: 3.5}, got.Breakdown)
}

func TestCompositeSingleTrackWeights(t *testing.T) {
	trad := &grades.TraditionalGrade{Score: 17, Points: 20}
	gs := levels(2, 3, 4)

	onlyTrad, err := Composite(trad, gs, Weights{Traditional: 1}, proficiency.FourPoint)
	require.NoError(t, err)
	assert.Equal(t, onlyTrad.TraditionalScore, onlyTrad.CompositeScore)

	onlyStd, err := Composite(trad, gs, Weights{Standards: 1}, proficiency.FourPoint)
	require.NoError(t, err)
	assert.Equal(t, onlyStd.StandardsScore, onlyStd.CompositeScore)
	assert.Equal(t, 85.0, onlyStd.StandardsScore)
	assert.Equal(t, proficiency.Found, onlyStd.StandardsConversion)
}

func TestCompositeWithoutTraditionalGrade(t *testing.T) {
	got, err := Composite(nil, levels(4), DefaultWeights(), proficiency.FourPoint)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.TraditionalScore)
	assert.Equal(t, 50.0, got.CompositeScore)
}

func TestCompositeReportsRatingsOutsideClassicRange(t *testing.T) {
	trad := &grades.TraditionalGrade{Score: 9, Points: 10}
	got, err := Composite(trad, levels(5, 5), DefaultWeights(), proficiency.FivePoint)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StandardsScore)
	assert.Equal(t, 2, got.Breakdown.StandardsCount)
	assert.Equal(t, 2, got.Breakdown.StandardsExcluded)
	assert.Equal(t, 45.0, got.CompositeScore)

	mixed, err := Composite(trad, levels(5, 4), DefaultWeights(), proficiency.FivePoint)
	require.NoError(t, err)
	assert.Equal(t, 1, mixed.Breakdown.StandardsExcluded)
	assert.Equal(t, 4.0, mixed.Breakdown.StandardsAverage)
}

func TestCompositeErrors(t *testing.T) {
	_, err := Composite(&grades.TraditionalGrade{Score: 1}, nil, DefaultWeights(), proficiency.FourPoint)
	assert.ErrorIs(t, err, grading.ErrInvalidAssignment)

	_, err = Composite(nil, levels(3), DefaultWeights(), "seven_point")
	assert.ErrorIs(t, err, proficiency.ErrUnknownScale)
}

func TestRecommendations(t *testing.T) {
	assert.Empty(t, Recommendations(nil))

	progress := []StandardProgress{
		{StandardID: "A", Mastery: MasteryResult{Average: 2.0}, Trend: ProgressTrend{Direction: Stable}},
		{StandardID: "B", Mastery: MasteryResult{Average: 3.9}, Trend: ProgressTrend{Direction: Improving}},
		{StandardID: "C", Mastery: MasteryResult{Average: 3.0}, Trend: ProgressTrend{Direction: Declining}},
	}
	got := Recommendations(progress)
	require.Len(t, got, 2)
	assert.Equal(t, Intervention, got[0].Type)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, []string{"A", "C"}, got[0].Standards)
	assert.Equal(t, "2 standard(s) need additional support", got[0].Message)
	assert.Equal(t, Advancement, got[1].Type)
	assert.Equal(t, []string{"B"}, got[1].Standards)
}

func TestRecommendationsGeneralNotes(t *testing.T) {
	low := Recommendations([]StandardProgress{{StandardID: "A", Mastery: MasteryResult{Average: 1.5}}})
	require.Len(t, low, 2)
	assert.Equal(t, General, low[1].Type)
	assert.Equal(t, PriorityHigh, low[1].Priority)

	high := Recommendations([]StandardProgress{{StandardID: "A", Mastery: MasteryResult{Average: 3.6}}})
	require.Len(t, high, 1)
	assert.Equal(t, General, high[0].Type)
	assert.Equal(t, PriorityLow, high[0].Priority)
}

func TestProgress(t *testing.T) {
	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	gs := []grades.StandardsGrade{
		{StudentID: "s1", StandardID: "W.2", ProficiencyLevel: 4, Date: base.AddDate(0, 0, 14)},
		{StudentID: "s1", StandardID: "W.2", ProficiencyLevel: 2, Date: base},
		{StudentID: "s1", StandardID: "W.2", ProficiencyLevel: 3, Date: base.AddDate(0, 0, 7)},
		{StudentID: "s1", StandardID: "RL.1", ProficiencyLevel: 4, Date: base},
		{StudentID: "s2", StandardID: "RL.1", ProficiencyLevel: 1, Date: base},
	}
	rep := Progress("s1", gs, ProgressOptions{})
	require.Len(t, rep.Standards, 2)
	assert.Equal(t, "RL.1", rep.Standards[0].StandardID)

	w2 := rep.Standards[1]
	assert.Equal(t, 3, w2.AssignmentsCount)
	assert.Equal(t, 2, w2.FirstGrade.ProficiencyLevel)
	assert.Equal(t, 4, w2.LatestGrade.ProficiencyLevel)
	assert.Equal(t, Improving, w2.Trend.Direction)
	assert.Equal(t, 1.0, w2.Trend.Slope)

	assert.Equal(t, 2, rep.Overall.TotalStandards)
	assert.Equal(t, 2, rep.Overall.MasteredStandards)
	assert.Equal(t, 3.25, rep.Overall.AverageProficiency)
	assert.Equal(t, Improving, rep.Overall.Trend.Direction)
	assert.Nil(t, rep.From)

	only := Progress("s1", gs, ProgressOptions{StandardID: "RL.1"})
	require.Len(t, only.Standards, 1)

	windowed := Progress("s1", gs, ProgressOptions{From: base, To: base.AddDate(0, 0, 10)})
	require.Len(t, windowed.Standards, 1)
	assert.Equal(t, 3, windowed.Standards[0].Grades[0].ProficiencyLevel)
	require.NotNil(t, windowed.From)

	empty := Progress("nobody", gs, ProgressOptions{})
	assert.Empty(t, empty.Standards)
	assert.Empty(t, empty.Overall.Recommendations)
}
