package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/grades"
)

// POST /assignments
func CreateAssignmentHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a grades.Assignment
		if !decode(w, r, &a) {
			return
		}
		out, err := svc.PutAssignment(r.Context(), a)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /assignments
func ListAssignmentsHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := svc.ListAssignments(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, as)
	}
}

// POST /students
func CreateStudentHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s grades.Student
		if !decode(w, r, &s) {
			return
		}
		out, err := svc.PutStudent(r.Context(), s)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// POST /grades  { "student_id", "assignment_id", "score", "points"? }
func RecordGradeHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g grades.TraditionalGrade
		if !decode(w, r, &g) {
			return
		}
		out, err := svc.RecordGrade(r.Context(), g)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /standards-grades
func RecordStandardsGradeHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g grades.StandardsGrade
		if !decode(w, r, &g) {
			return
		}
		out, err := svc.RecordStandardsGrade(r.Context(), g)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /standards-mappings
func MapStandardHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m grades.StandardMapping
		if !decode(w, r, &m) {
			return
		}
		out, err := svc.MapStandard(r.Context(), m)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /standards-mappings?assignment_id=
func ListMappingsHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := svc.ListStandardMappings(r.Context(), r.URL.Query().Get("assignment_id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ms)
	}
}
