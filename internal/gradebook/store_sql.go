package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// SQLStore keeps the gradebook in the tables created by db.Open. Queries use
// $n placeholders, which both the sqlite and pgx drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutAssignment(ctx context.Context, a grades.Assignment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO assignments (id,name,points,subject,category,has_standards,proficiency_scale)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, points=EXCLUDED.points, subject=EXCLUDED.subject,
			category=EXCLUDED.category, has_standards=EXCLUDED.has_standards, proficiency_scale=EXCLUDED.proficiency_scale`,
		a.ID, a.Name, a.Points, a.Subject, a.Category, boolInt(a.HasStandardsAssessment), a.ProficiencyScale)
	return err
}

const assignmentCols = `id,name,points,subject,category,has_standards,proficiency_scale`

func scanAssignment(sc interface{ Scan(...any) error }) (grades.Assignment, error) {
	var a grades.Assignment
	var has int
	if err := sc.Scan(&a.ID, &a.Name, &a.Points, &a.Subject, &a.Category, &has, &a.ProficiencyScale); err != nil {
		return grades.Assignment{}, err
	}
	a.HasStandardsAssessment = has != 0
	return a, nil
}

func (s *SQLStore) GetAssignment(ctx context.Context, id string) (grades.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM assignments WHERE id=$1`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return grades.Assignment{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) ListAssignments(ctx context.Context) ([]grades.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+assignmentCols+` FROM assignments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grades.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutStudent(ctx context.Context, st grades.Student) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO students (id,first_name,last_name) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name`,
		st.ID, st.FirstName, st.LastName)
	return err
}

func (s *SQLStore) ListStudents(ctx context.Context) ([]grades.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,first_name,last_name FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grades.Student{}
	for rows.Next() {
		var st grades.Student
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutTraditionalGrade(ctx context.Context, g grades.TraditionalGrade) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO traditional_grades
		(id,student_id,assignment_id,subject,score,points,percentage,date_entered)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (student_id, assignment_id) DO UPDATE SET id=EXCLUDED.id, subject=EXCLUDED.subject,
			score=EXCLUDED.score, points=EXCLUDED.points, percentage=EXCLUDED.percentage, date_entered=EXCLUDED.date_entered`,
		g.ID, g.StudentID, g.AssignmentID, g.Subject, g.Score, g.Points, g.Percentage, unixNano(g.DateEntered))
	return err
}

func (s *SQLStore) ListTraditionalGrades(ctx context.Context, f Filter) ([]grades.TraditionalGrade, error) {
	where, args := f.where(false)
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,assignment_id,subject,score,points,percentage,date_entered
		FROM traditional_grades`+where+` ORDER BY student_id, assignment_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grades.TraditionalGrade{}
	for rows.Next() {
		var g grades.TraditionalGrade
		var entered int64
		if err := rows.Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.Subject, &g.Score, &g.Points, &g.Percentage, &entered); err != nil {
			return nil, err
		}
		g.DateEntered = fromUnixNano(entered)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutStandardsGrade(ctx context.Context, g grades.StandardsGrade) error {
	// seq orders ratings that share a timestamp; a re-rating becomes the newest.
	_, err := s.db.ExecContext(ctx, `INSERT INTO standards_grades
		(id,student_id,assignment_id,standard_id,standard_name,proficiency_level,graded_at,seq)
		VALUES ($1,$2,$3,$4,$5,$6,$7,(SELECT COALESCE(MAX(seq),0)+1 FROM standards_grades))
		ON CONFLICT (student_id, assignment_id, standard_id) DO UPDATE SET id=EXCLUDED.id,
			standard_name=EXCLUDED.standard_name, proficiency_level=EXCLUDED.proficiency_level,
			graded_at=EXCLUDED.graded_at, seq=EXCLUDED.seq`,
		g.ID, g.StudentID, g.AssignmentID, g.StandardID, g.StandardName, g.ProficiencyLevel, unixNano(g.Date))
	return err
}

func (s *SQLStore) ListStandardsGrades(ctx context.Context, f Filter) ([]grades.StandardsGrade, error) {
	where, args := f.where(true)
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,assignment_id,standard_id,standard_name,proficiency_level,graded_at
		FROM standards_grades`+where+` ORDER BY graded_at, seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grades.StandardsGrade{}
	for rows.Next() {
		var g grades.StandardsGrade
		var graded int64
		if err := rows.Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.StandardID, &g.StandardName, &g.ProficiencyLevel, &graded); err != nil {
			return nil, err
		}
		g.Date = fromUnixNano(graded)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutStandardMapping(ctx context.Context, m grades.StandardMapping) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO standard_mappings
		(id,assignment_id,standard_id,alignment_strength,coverage_type,weight)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (assignment_id, standard_id) DO UPDATE SET id=EXCLUDED.id,
			alignment_strength=EXCLUDED.alignment_strength, coverage_type=EXCLUDED.coverage_type, weight=EXCLUDED.weight`,
		m.ID, m.AssignmentID, m.StandardID, m.AlignmentStrength, string(m.CoverageType), m.Weight)
	return err
}

func (s *SQLStore) ListStandardMappings(ctx context.Context, assignmentID string) ([]grades.StandardMapping, error) {
	q := `SELECT id,assignment_id,standard_id,alignment_strength,coverage_type,weight FROM standard_mappings`
	var args []any
	if assignmentID != "" {
		q += ` WHERE assignment_id=$1`
		args = append(args, assignmentID)
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY assignment_id, standard_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []grades.StandardMapping{}
	for rows.Next() {
		var m grades.StandardMapping
		var cov string
		if err := rows.Scan(&m.ID, &m.AssignmentID, &m.StandardID, &m.AlignmentStrength, &cov, &m.Weight); err != nil {
			return nil, err
		}
		m.CoverageType = grades.CoverageType(cov)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Ping is used by readiness checks.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (f Filter) where(withStandard bool) (string, []any) {
	var conds []string
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	add("student_id", f.StudentID)
	add("assignment_id", f.AssignmentID)
	if withStandard {
		add("standard_id", f.StandardID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Timestamps are stored as Unix nanoseconds so ratings entered within the same
// second keep their order. The zero time is stored as 0.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
