package sdk

import (
	"fmt"
	"strings"
)

// Role identifies which portal a session belongs to.
// Roles are always compared in their normalized (lower-case) form.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleDepartment Role = "department"
	RoleDirector   Role = "director"
)

// Roles lists every role the backend issues logins for.
var Roles = []Role{RoleStudent, RoleTeacher, RoleDepartment, RoleDirector}

// LoginRoute is the entry point unauthenticated navigations are sent to.
const LoginRoute = "/login"

// HomeRoute is the public landing page.
const HomeRoute = "/"

// NormalizeRole folds any casing or surrounding whitespace of a role tag into
// its canonical form. It does not check that the role is known.
func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseRole normalizes raw and rejects roles outside the fixed set.
func ParseRole(raw string) (Role, error) {
	role := NormalizeRole(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q (expected one of %s)", raw, roleList())
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch NormalizeRole(string(r)) {
	case RoleStudent, RoleTeacher, RoleDepartment, RoleDirector:
		return true
	}
	return false
}

// Equal compares two roles case-insensitively.
func (r Role) Equal(other Role) bool {
	return NormalizeRole(string(r)) == NormalizeRole(string(other))
}

// LoginPath is the backend endpoint used to exchange credentials for this role.
func (r Role) LoginPath() string {
	return "/api/" + string(NormalizeRole(string(r))) + "/login"
}

// LandingPath is where a session of this role is sent after login, or when it
// navigates somewhere it is not allowed to go.
func (r Role) LandingPath() string {
	role := NormalizeRole(string(r))
	switch role {
	case RoleDirector:
		return "/director/dashboard"
	case RoleStudent, RoleTeacher, RoleDepartment:
		return "/" + string(role)
	default:
		return HomeRoute
	}
}

func (r Role) String() string {
	return string(r)
}

func roleList() string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}
