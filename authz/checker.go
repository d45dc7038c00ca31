package authz

import "github.com/kbukum/clinic/auth"

// Checker answers route-level permission questions for a role.
// permission has the form "resource:action", e.g. "prescription:create".
type Checker interface {
	HasPermission(role auth.Role, permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(role auth.Role, permission string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(role auth.Role, permission string) bool {
	return f(role, permission)
}

// MapChecker is a static role to permission-pattern table. Patterns may use
// wildcards, see MatchPattern.
type MapChecker struct {
	permissions map[auth.Role][]string
}

// NewMapChecker creates a Checker from a static table.
func NewMapChecker(permissions map[auth.Role][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

// HasPermission implements Checker.
func (c *MapChecker) HasPermission(role auth.Role, required string) bool {
	patterns, ok := c.permissions[role]
	if !ok {
		return false
	}
	return MatchAny(patterns, required)
}

// DefaultPermissions is the clinic's route table. Ownership of individual
// records is checked separately by Guard.
func DefaultPermissions() map[auth.Role][]string {
	return map[auth.Role][]string{
		auth.RolePatient: {
			"doctor:list",
			"appointment:read",
			"appointment:create",
			"prescription:read",
		},
		auth.RoleDoctor: {
			"appointment:*",
			"prescription:*",
			"medication:*",
		},
	}
}
