package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/standards"
)

// GET /students/{studentID}/assignments/{assignmentID}/composite?traditional=&standards=
func CompositeHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
		assignmentID := strings.TrimSpace(chi.URLParam(r, "assignmentID"))

		var weights *standards.Weights
		q := r.URL.Query()
		if q.Has("traditional") || q.Has("standards") {
			tw, err1 := parseFinite(q.Get("traditional"))
			sw, err2 := parseFinite(q.Get("standards"))
			if err1 != nil || err2 != nil || tw < 0 || sw < 0 {
				http.Error(w, "traditional and standards weights must both be non-negative numbers", http.StatusBadRequest)
				return
			}
			weights = &standards.Weights{Traditional: tw, Standards: sw}
		}
		res, err := svc.Composite(r.Context(), studentID, assignmentID, weights)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /students/{studentID}/progress?standard_id=&from=&to=&threshold=
func ProgressHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opt := standards.ProgressOptions{StandardID: q.Get("standard_id")}
		var err error
		if opt.From, err = parseDate(q.Get("from")); err != nil {
			http.Error(w, "bad from date", http.StatusBadRequest)
			return
		}
		if opt.To, err = parseDate(q.Get("to")); err != nil {
			http.Error(w, "bad to date", http.StatusBadRequest)
			return
		}
		if v := q.Get("threshold"); v != "" {
			if opt.Threshold, err = parseFinite(v); err != nil {
				http.Error(w, "bad threshold", http.StatusBadRequest)
				return
			}
		}
		rep, err := svc.StudentProgress(r.Context(), chi.URLParam(r, "studentID"), opt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// POST /students/{studentID}/final-grade  { "categories": [...], "rounding_method": "..." }
func FinalGradeHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var book grading.Book
		if !decode(w, r, &book) {
			return
		}
		fg, warnings, err := svc.FinalGrade(r.Context(), chi.URLParam(r, "studentID"), book)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": fg, "warnings": warnings})
	}
}

// GET /analytics?subject=
func AnalyticsHandler(svc *gradebook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.ClassAnalytics(r.Context(), r.URL.Query().Get("subject"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// GET /scales
func ScalesHandler(reg *proficiency.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type scaleOut struct {
			proficiency.Option
			Levels []proficiency.Level `json:"levels"`
		}
		var out []scaleOut
		for _, o := range reg.Options() {
			s, err := reg.Lookup(o.Value)
			if err != nil {
				continue
			}
			out = append(out, scaleOut{Option: o, Levels: s.Levels})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

var errNotFinite = errors.New("not a finite number")

// parseFinite is strconv.ParseFloat without NaN and infinities, which would
// leave nothing encodable in the response.
func parseFinite(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
