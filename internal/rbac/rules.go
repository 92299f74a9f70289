package rbac

const (
	PermAssignmentsView  = "assignments:view"
	PermAssignmentsWrite = "assignments:write"
	PermStudentsWrite    = "students:write"
	PermGradesWrite      = "grades:write"
	PermStandardsMap     = "standards:map"
	PermCompositeView    = "composite:view"
	PermProgressView     = "progress:view"
	PermFinalGradeView   = "final-grade:view"
	PermAnalyticsView    = "analytics:view"
	PermScalesView       = "scales:view"
)

// RolePermissions is the default policy. Students see their own progress
// through RequireOwnerOr; the permissions below grant access to everyone's.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermScalesView,
	},
	RoleTeacher: {
		"assignments:*",
		PermStudentsWrite,
		PermGradesWrite,
		PermStandardsMap,
		PermCompositeView,
		PermProgressView,
		PermFinalGradeView,
		PermAnalyticsView,
		PermScalesView,
	},
	RoleAdmin: {
		"*", // everything
	},
}
