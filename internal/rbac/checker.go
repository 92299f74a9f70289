package rbac

import (
	"context"
	"sort"
	"strings"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Checker answers permission questions against a role policy. Policy entries
// may end in "*" to match every permission with that prefix.
type Checker struct {
	policy map[string][]string
}

// NewChecker uses RolePermissions when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{policy: rp}
}

// KnownRole reports whether the policy defines role.
func (c *Checker) KnownRole(role string) bool {
	_, ok := c.policy[role]
	return ok
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.policy[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// Grants lists the permissions of role, sorted. Wildcards are listed as
// written.
func (c *Checker) Grants(role string) []string {
	out := append([]string(nil), c.policy[role]...)
	sort.Strings(out)
	return out
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "*")
	return ok && strings.HasPrefix(perm, prefix)
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(roleKey{}).(string)
	return s
}
