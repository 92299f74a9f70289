package auth

import (
	"context"

	"github.com/mind-engage/mindengage-gradebook/internal/rbac"
)

type subjectKey struct{}

// WithSubject stores the authenticated username. For students it is also the
// student ID their grades are filed under.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// IsStudent reports whether the caller is the student with the given ID.
func IsStudent(ctx context.Context, studentID string) bool {
	sub := SubjectFromContext(ctx)
	return sub != "" && sub == studentID && rbac.RoleFromContext(ctx) == rbac.RoleStudent
}
