package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-gradebook/internal/auth/middleware"
	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/rbac"
)

// MountGradebook registers the gradebook API on a router that already runs
// JWTMiddleware.
func MountGradebook(r chi.Router, svc *gradebook.Service, reg *proficiency.Registry) {
	// students may read their own reports
	ownStudent := func(req *http.Request) bool {
		return auth.IsStudent(req.Context(), chi.URLParam(req, "studentID"))
	}

	r.With(rbac.Require(rbac.PermAssignmentsWrite)).Post("/assignments", CreateAssignmentHandler(svc))
	r.With(rbac.RequireAny(rbac.PermAssignmentsView, rbac.PermAssignmentsWrite)).Get("/assignments", ListAssignmentsHandler(svc))
	r.With(rbac.Require(rbac.PermStudentsWrite)).Post("/students", CreateStudentHandler(svc))

	r.With(rbac.Require(rbac.PermGradesWrite)).Post("/grades", RecordGradeHandler(svc))
	r.With(rbac.Require(rbac.PermGradesWrite)).Post("/standards-grades", RecordStandardsGradeHandler(svc))
	r.With(rbac.Require(rbac.PermStandardsMap)).Post("/standards-mappings", MapStandardHandler(svc))
	r.With(rbac.Require(rbac.PermStandardsMap)).Get("/standards-mappings", ListMappingsHandler(svc))

	r.With(rbac.RequireOwnerOr(rbac.PermCompositeView, ownStudent)).
		Get("/students/{studentID}/assignments/{assignmentID}/composite", CompositeHandler(svc))
	r.With(rbac.RequireOwnerOr(rbac.PermProgressView, ownStudent)).
		Get("/students/{studentID}/progress", ProgressHandler(svc))
	r.With(rbac.RequireOwnerOr(rbac.PermFinalGradeView, ownStudent)).
		Post("/students/{studentID}/final-grade", FinalGradeHandler(svc))

	r.With(rbac.Require(rbac.PermAnalyticsView)).Get("/analytics", AnalyticsHandler(svc))
	r.With(rbac.Require(rbac.PermScalesView)).Get("/scales", ScalesHandler(reg))
}
