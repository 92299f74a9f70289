package gradebook

import (
	"context"
	"sort"
	"sync"

	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

type tradKey struct{ student, assignment string }
type stdKey struct{ student, assignment, standard string }
type mapKey struct{ assignment, standard string }

type memoryStore struct {
	mu          sync.RWMutex
	assignments map[string]grades.Assignment
	students    map[string]grades.Student
	trad        map[tradKey]grades.TraditionalGrade
	std         map[stdKey]seqGrade
	mappings    map[mapKey]grades.StandardMapping
	seq         uint64
}

// seqGrade orders ratings that share a timestamp by when they were stored.
type seqGrade struct {
	grades.StandardsGrade
	seq uint64
}

func NewInMemoryStore() Store {
	return &memoryStore{
		assignments: map[string]grades.Assignment{},
		students:    map[string]grades.Student{},
		trad:        map[tradKey]grades.TraditionalGrade{},
		std:         map[stdKey]seqGrade{},
		mappings:    map[mapKey]grades.StandardMapping{},
	}
}

func (m *memoryStore) PutAssignment(_ context.Context, a grades.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (m *memoryStore) GetAssignment(_ context.Context, id string) (grades.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return grades.Assignment{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAssignments(_ context.Context) ([]grades.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]grades.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) PutStudent(_ context.Context, s grades.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = s
	return nil
}

func (m *memoryStore) ListStudents(_ context.Context) ([]grades.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]grades.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) PutTraditionalGrade(_ context.Context, g grades.TraditionalGrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trad[tradKey{g.StudentID, g.AssignmentID}] = g
	return nil
}

func (m *memoryStore) ListTraditionalGrades(_ context.Context, f Filter) ([]grades.TraditionalGrade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []grades.TraditionalGrade{}
	for k, g := range m.trad {
		if f.matches(k.student, k.assignment, "") {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].AssignmentID < out[j].AssignmentID
	})
	return out, nil
}

func (m *memoryStore) PutStandardsGrade(_ context.Context, g grades.StandardsGrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.std[stdKey{g.StudentID, g.AssignmentID, g.StandardID}] = seqGrade{g, m.seq}
	return nil
}

func (m *memoryStore) ListStandardsGrades(_ context.Context, f Filter) ([]grades.StandardsGrade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []seqGrade{}
	for k, g := range m.std {
		if f.matches(k.student, k.assignment, k.standard) {
			matched = append(matched, g)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].seq < matched[j].seq
	})
	out := make([]grades.StandardsGrade, len(matched))
	for i, g := range matched {
		out[i] = g.StandardsGrade
	}
	return out, nil
}

func (m *memoryStore) PutStandardMapping(_ context.Context, sm grades.StandardMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[mapKey{sm.AssignmentID, sm.StandardID}] = sm
	return nil
}

func (m *memoryStore) ListStandardMappings(_ context.Context, assignmentID string) ([]grades.StandardMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []grades.StandardMapping{}
	for k, sm := range m.mappings {
		if assignmentID == "" || k.assignment == assignmentID {
			out = append(out, sm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssignmentID != out[j].AssignmentID {
			return out[i].AssignmentID < out[j].AssignmentID
		}
		return out[i].StandardID < out[j].StandardID
	})
	return out, nil
}
