package gradebook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-gradebook/internal/db"
	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

func openSQLite(t *testing.T) *gradebook.SQLStore {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return gradebook.NewSQLStore(conn)
}

func stores(t *testing.T) map[string]gradebook.Store {
	return map[string]gradebook.Store{
		"memory": gradebook.NewInMemoryStore(),
		"sqlite": openSQLite(t),
	}
}

func TestStoreAssignmentsAndStudents(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.PutAssignment(ctx, grades.Assignment{ID: "b", Name: "Essay", Points: 20, Subject: "English", HasStandardsAssessment: true, ProficiencyScale: "four_point"}))
			require.NoError(t, st.PutAssignment(ctx, grades.Assignment{ID: "a", Name: "Quiz", Points: 10}))
			require.NoError(t, st.PutAssignment(ctx, grades.Assignment{ID: "a", Name: "Quiz 1", Points: 12}))

			a, err := st.GetAssignment(ctx, "b")
			require.NoError(t, err)
			assert.True(t, a.HasStandardsAssessment)
			assert.Equal(t, "four_point", a.ProficiencyScale)

			_, err = st.GetAssignment(ctx, "zzz")
			assert.True(t, errors.Is(err, gradebook.ErrNotFound))

			as, err := st.ListAssignments(ctx)
			require.NoError(t, err)
			require.Len(t, as, 2)
			assert.Equal(t, "Quiz 1", as[0].Name)
			assert.Equal(t, 12.0, as[0].Points)

			require.NoError(t, st.PutStudent(ctx, grades.Student{ID: "s2", FirstName: "Ben"}))
			require.NoError(t, st.PutStudent(ctx, grades.Student{ID: "s1", FirstName: "Ada", LastName: "Lovelace"}))
			ss, err := st.ListStudents(ctx)
			require.NoError(t, err)
			require.Len(t, ss, 2)
			assert.Equal(t, "Ada Lovelace", ss[0].Name())
		})
	}
}

func TestStoreGradesUpsertAndFilter(t *testing.T) {
	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.PutTraditionalGrade(ctx, grades.TraditionalGrade{ID: "g1", StudentID: "s1", AssignmentID: "a1", Score: 5, Points: 10, Percentage: 50, DateEntered: at}))
			require.NoError(t, st.PutTraditionalGrade(ctx, grades.TraditionalGrade{ID: "g2", StudentID: "s1", AssignmentID: "a1", Score: 9, Points: 10, Percentage: 90, DateEntered: at}))
			require.NoError(t, st.PutTraditionalGrade(ctx, grades.TraditionalGrade{ID: "g3", StudentID: "s2", AssignmentID: "a1", Score: 7, Points: 10, Percentage: 70, DateEntered: at}))

			all, err := st.ListTraditionalGrades(ctx, gradebook.Filter{})
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, 90.0, all[0].Percentage)
			assert.True(t, at.Equal(all[0].DateEntered))

			one, err := st.ListTraditionalGrades(ctx, gradebook.Filter{StudentID: "s2"})
			require.NoError(t, err)
			require.Len(t, one, 1)
			assert.Equal(t, "g3", one[0].ID)

			require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{ID: "x2", StudentID: "s1", AssignmentID: "a2", StandardID: "RL.1", ProficiencyLevel: 3, Date: at.Add(time.Hour)}))
			require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{ID: "x1", StudentID: "s1", AssignmentID: "a1", StandardID: "RL.1", ProficiencyLevel: 2, Date: at}))
			require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{ID: "x3", StudentID: "s1", AssignmentID: "a1", StandardID: "W.2", ProficiencyLevel: 4, Date: at.Add(2 * time.Hour)}))

			std, err := st.ListStandardsGrades(ctx, gradebook.Filter{StudentID: "s1", StandardID: "RL.1"})
			require.NoError(t, err)
			require.Len(t, std, 2)
			assert.Equal(t, "x1", std[0].ID, "oldest first")

			byAssignment, err := st.ListStandardsGrades(ctx, gradebook.Filter{AssignmentID: "a1"})
			require.NoError(t, err)
			assert.Len(t, byAssignment, 2)
		})
	}
}

func TestStoreMappings(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.PutStandardMapping(ctx, grades.StandardMapping{ID: "m1", AssignmentID: "a1", StandardID: "RL.1", AlignmentStrength: 0.5, CoverageType: grades.CoveragePartial, Weight: 2}))
			require.NoError(t, st.PutStandardMapping(ctx, grades.StandardMapping{ID: "m2", AssignmentID: "a2", StandardID: "RL.1", CoverageType: grades.CoverageFull}))

			ms, err := st.ListStandardMappings(ctx, "a1")
			require.NoError(t, err)
			require.Len(t, ms, 1)
			assert.Equal(t, grades.CoveragePartial, ms[0].CoverageType)
			assert.Equal(t, 0.5, ms[0].AlignmentStrength)

			all, err := st.ListStandardMappings(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestStoreStandardsGradesKeepSubSecondOrder(t *testing.T) {
	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// IDs sort against the recording order on purpose
			ids := []string{"z", "m", "b", "a"}
			for i, id := range ids {
				require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{
					ID: id, StudentID: "s1", AssignmentID: "a" + id, StandardID: "RL.1",
					ProficiencyLevel: i + 1, Date: at.Add(time.Duration(i) * 100 * time.Millisecond),
				}))
			}
			got, err := st.ListStandardsGrades(ctx, gradebook.Filter{StudentID: "s1"})
			require.NoError(t, err)
			require.Len(t, got, 4)
			for i, g := range got {
				assert.Equal(t, ids[i], g.ID)
				assert.True(t, at.Add(time.Duration(i)*100*time.Millisecond).Equal(g.Date), "date %d", i)
			}
		})
	}
}

func TestStoreStandardsGradesSameInstantInRecordingOrder(t *testing.T) {
	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"z", "m", "b"} {
				require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{
					ID: id, StudentID: "s1", AssignmentID: "a" + id, StandardID: "RL.1", ProficiencyLevel: i + 1, Date: at,
				}))
			}
			// re-rating moves the rating to the end
			require.NoError(t, st.PutStandardsGrade(ctx, grades.StandardsGrade{
				ID: "z2", StudentID: "s1", AssignmentID: "az", StandardID: "RL.1", ProficiencyLevel: 4, Date: at,
			}))
			got, err := st.ListStandardsGrades(ctx, gradebook.Filter{})
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []string{"m", "b", "z2"}, []string{got[0].ID, got[1].ID, got[2].ID})
		})
	}
}
