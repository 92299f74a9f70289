package gradebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-gradebook/internal/analytics"
	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/kv"
	"github.com/mind-engage/mindengage-gradebook/internal/logger"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/standards"
	syncx "github.com/mind-engage/mindengage-gradebook/internal/sync"
)

// Settings are the gradebook defaults applied when a request does not
// override them.
type Settings struct {
	Weights          standards.Weights
	Analytics        analytics.Settings
	MasteryThreshold float64
	Scale            proficiency.ScaleType
	CacheTTL         time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Weights:          standards.DefaultWeights(),
		Analytics:        analytics.DefaultSettings(),
		MasteryThreshold: standards.DefaultMasteryThreshold,
		Scale:            proficiency.DefaultScale,
		CacheTTL:         5 * time.Minute,
	}
}

type Service struct {
	store    Store
	events   syncx.Appender
	cache    kv.Store
	log      *logger.Logger
	settings Settings
	check    *checker
	now      func() time.Time
}

type Option func(*Service)

// WithEvents records every mutation in an event log.
func WithEvents(a syncx.Appender) Option { return func(s *Service) { s.events = a } }

// WithCache sets the cache used for class analytics. Defaults to an
// in-process kv.MemoryStore.
func WithCache(c kv.Store) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

func WithSettings(st Settings) Option { return func(s *Service) { s.settings = st } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		cache:    kv.NewMemoryStore(),
		log:      logger.Nop(),
		settings: DefaultSettings(),
		check:    newChecker(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("service", "Gradebook")
	return s
}

func (s *Service) Settings() Settings { return s.settings }

func (s *Service) PutAssignment(ctx context.Context, a grades.Assignment) (grades.Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.check.check(a); err != nil {
		return grades.Assignment{}, err
	}
	if a.ProficiencyScale != "" {
		if _, err := proficiency.Default().Lookup(proficiency.ScaleType(a.ProficiencyScale)); err != nil {
			return grades.Assignment{}, err
		}
	}
	if err := s.store.PutAssignment(ctx, a); err != nil {
		return grades.Assignment{}, fmt.Errorf("put assignment: %w", err)
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *Service) ListAssignments(ctx context.Context) ([]grades.Assignment, error) {
	return s.store.ListAssignments(ctx)
}

func (s *Service) PutStudent(ctx context.Context, st grades.Student) (grades.Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if err := s.check.check(st); err != nil {
		return grades.Student{}, err
	}
	if err := s.store.PutStudent(ctx, st); err != nil {
		return grades.Student{}, fmt.Errorf("put student: %w", err)
	}
	s.invalidate(ctx)
	return st, nil
}

// RecordGrade stores points earned on an assignment. Points default to the
// assignment's max points and the percentage is always recomputed, so stored
// grades never carry the legacy score-or-percentage ambiguity.
func (s *Service) RecordGrade(ctx context.Context, g grades.TraditionalGrade) (grades.TraditionalGrade, error) {
	a, err := s.assignment(ctx, g.AssignmentID)
	if err != nil {
		return grades.TraditionalGrade{}, err
	}
	if g.Points == 0 {
		g.Points = a.Points
	}
	if g.Subject == "" {
		g.Subject = a.Subject
	}
	if err := s.check.check(g); err != nil {
		return grades.TraditionalGrade{}, err
	}
	pct, err := grading.Normalize(g.Score, g.Points)
	if err != nil {
		return grades.TraditionalGrade{}, err
	}
	g.Percentage = pct
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.DateEntered.IsZero() {
		g.DateEntered = s.now().UTC()
	}
	if err := s.store.PutTraditionalGrade(ctx, g); err != nil {
		return grades.TraditionalGrade{}, fmt.Errorf("put grade: %w", err)
	}
	s.record(ctx, syncx.TypeGradeRecorded, g.StudentID+"/"+g.AssignmentID, g)
	s.invalidate(ctx)
	return g, nil
}

// RecordStandardsGrade stores a proficiency rating. The level must exist on
// the assignment's scale.
func (s *Service) RecordStandardsGrade(ctx context.Context, g grades.StandardsGrade) (grades.StandardsGrade, error) {
	if err := s.check.check(g); err != nil {
		return grades.StandardsGrade{}, err
	}
	a, err := s.assignment(ctx, g.AssignmentID)
	if err != nil {
		return grades.StandardsGrade{}, err
	}
	scale, err := proficiency.Default().Lookup(s.scaleOf(a))
	if err != nil {
		return grades.StandardsGrade{}, err
	}
	if g.ProficiencyLevel > scale.Max() {
		return grades.StandardsGrade{}, invalid("proficiency_level",
			fmt.Sprintf("proficiency_level must be between 1 and %d", scale.Max()))
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Date.IsZero() {
		g.Date = s.now().UTC()
	}
	if err := s.store.PutStandardsGrade(ctx, g); err != nil {
		return grades.StandardsGrade{}, fmt.Errorf("put standards grade: %w", err)
	}
	s.record(ctx, syncx.TypeStandardsGradeRecorded, g.StudentID+"/"+g.AssignmentID+"/"+g.StandardID, g)
	s.invalidate(ctx)
	return g, nil
}

// MapStandard links an assignment to a standard and flags the assignment as
// standards assessed.
func (s *Service) MapStandard(ctx context.Context, m grades.StandardMapping) (grades.StandardMapping, error) {
	if err := s.check.check(m); err != nil {
		return grades.StandardMapping{}, err
	}
	a, err := s.assignment(ctx, m.AssignmentID)
	if err != nil {
		return grades.StandardMapping{}, err
	}
	if m.CoverageType == "" {
		m.CoverageType = grades.CoverageFull
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.store.PutStandardMapping(ctx, m); err != nil {
		return grades.StandardMapping{}, fmt.Errorf("put mapping: %w", err)
	}
	if !a.HasStandardsAssessment {
		a.HasStandardsAssessment = true
		if err := s.store.PutAssignment(ctx, a); err != nil {
			return grades.StandardMapping{}, fmt.Errorf("put assignment: %w", err)
		}
	}
	s.record(ctx, syncx.TypeStandardMapped, m.AssignmentID+"/"+m.StandardID, m)
	return m, nil
}

func (s *Service) ListStandardMappings(ctx context.Context, assignmentID string) ([]grades.StandardMapping, error) {
	return s.store.ListStandardMappings(ctx, assignmentID)
}

// Composite blends a student's grade on one assignment with the standards
// ratings from the same assignment. A nil w uses the configured weights.
func (s *Service) Composite(ctx context.Context, studentID, assignmentID string, w *standards.Weights) (standards.CompositeGradeResult, error) {
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return standards.CompositeGradeResult{}, err
	}
	f := Filter{StudentID: studentID, AssignmentID: assignmentID}
	trad, err := s.store.ListTraditionalGrades(ctx, f)
	if err != nil {
		return standards.CompositeGradeResult{}, err
	}
	std, err := s.store.ListStandardsGrades(ctx, f)
	if err != nil {
		return standards.CompositeGradeResult{}, err
	}
	var tg *grades.TraditionalGrade
	if len(trad) > 0 {
		tg = &trad[0]
	}
	weights := s.settings.Weights
	if w != nil {
		weights = *w
	}
	res, err := standards.Composite(tg, std, weights, s.scaleOf(a))
	if err == nil && res.Breakdown.StandardsExcluded > 0 {
		s.log.Warn("standards ratings outside 1..4 left out of composite",
			"student_id", studentID, "assignment_id", assignmentID, "excluded", res.Breakdown.StandardsExcluded)
	}
	return res, err
}

// StudentProgress builds the standards progress report of one student.
func (s *Service) StudentProgress(ctx context.Context, studentID string, opt standards.ProgressOptions) (standards.ProgressReport, error) {
	gs, err := s.store.ListStandardsGrades(ctx, Filter{StudentID: studentID, StandardID: opt.StandardID})
	if err != nil {
		return standards.ProgressReport{}, err
	}
	if opt.Threshold <= 0 {
		opt.Threshold = s.settings.MasteryThreshold
	}
	return standards.Progress(studentID, gs, opt), nil
}

// FinalGrade computes a student's category-weighted final grade.
func (s *Service) FinalGrade(ctx context.Context, studentID string, book grading.Book) (grading.FinalGrade, []string, error) {
	problems, warnings := grading.ValidateBook(book)
	if len(problems) > 0 {
		return grading.FinalGrade{}, nil, invalid("categories", problems[0])
	}
	gs, err := s.store.ListTraditionalGrades(ctx, Filter{StudentID: studentID})
	if err != nil {
		return grading.FinalGrade{}, nil, err
	}
	as, err := s.store.ListAssignments(ctx)
	if err != nil {
		return grading.FinalGrade{}, nil, err
	}
	return grading.ComputeFinalGrade(book, gs, as), warnings, nil
}

// ClassReport is the analytics dashboard of one subject, or of every subject
// when Subject is empty.
type ClassReport struct {
	Subject string                  `json:"subject,omitempty"`
	Version int64                   `json:"version"`
	Bundle  analytics.Bundle        `json:"analytics"`
	Alerts  []grading.LowGradeAlert `json:"low_grade_alerts"`
}

const versionKey = "analytics:version"

// ClassAnalytics returns the class report, served from cache while no grade
// has changed and the entry has not expired.
func (s *Service) ClassAnalytics(ctx context.Context, subject string) (ClassReport, error) {
	version := s.version(ctx)
	key := fmt.Sprintf("analytics:v%d:%s", version, subject)
	if b, err := s.cache.Get(ctx, key); err == nil {
		var rep ClassReport
		if err := json.Unmarshal(b, &rep); err == nil {
			return rep, nil
		}
		s.log.Warn("discarding unreadable cache entry", "key", key)
	} else if !errors.Is(err, kv.ErrNotFound) {
		s.log.Warn("cache get failed", "key", key, "error", err)
	}

	as, err := s.store.ListAssignments(ctx)
	if err != nil {
		return ClassReport{}, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return ClassReport{}, err
	}
	trad, err := s.store.ListTraditionalGrades(ctx, Filter{})
	if err != nil {
		return ClassReport{}, err
	}
	std, err := s.store.ListStandardsGrades(ctx, Filter{})
	if err != nil {
		return ClassReport{}, err
	}
	as, trad, std = analytics.FilterSubject(subject, as, trad, std)

	bundle, err := analytics.Compute(trad, std, as, students, s.settings.Analytics)
	if err != nil {
		return ClassReport{}, err
	}
	rep := ClassReport{
		Subject: subject,
		Version: version,
		Bundle:  bundle,
		Alerts:  grading.LowGradeAlerts(students, trad, grading.LowGradeThreshold),
	}
	if bundle.Traditional.LowGradeWarning {
		s.log.Warn("class average below 20%, points may have been entered as percentages",
			"subject", subject, "average", bundle.Traditional.AverageScore)
	}
	if b, err := json.Marshal(rep); err == nil {
		if err := s.cache.Set(ctx, key, b, s.settings.CacheTTL); err != nil {
			s.log.Warn("cache set failed", "key", key, "error", err)
		}
	}
	return rep, nil
}

func (s *Service) version(ctx context.Context) int64 {
	b, err := s.cache.Get(ctx, versionKey)
	if err != nil {
		return 0
	}
	n, _ := strconv.ParseInt(string(b), 10, 64)
	return n
}

// invalidate moves analytics to a new cache generation; old entries age out.
func (s *Service) invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, versionKey); err != nil {
		s.log.Warn("cache invalidate failed", "error", err)
	}
}

func (s *Service) record(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	e, err := syncx.NewEvent(typ, key, data)
	if err == nil {
		err = s.events.Append(ctx, e)
	}
	if err != nil {
		s.log.Error("event append failed", "type", typ, "key", key, "error", err)
	}
}

func (s *Service) assignment(ctx context.Context, id string) (grades.Assignment, error) {
	if id == "" {
		return grades.Assignment{}, invalid("assignment_id", "this field cannot be blank")
	}
	a, err := s.store.GetAssignment(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return grades.Assignment{}, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *Service) scaleOf(a grades.Assignment) proficiency.ScaleType {
	if a.ProficiencyScale != "" {
		return proficiency.ScaleType(a.ProficiencyScale)
	}
	return s.settings.Scale
}
