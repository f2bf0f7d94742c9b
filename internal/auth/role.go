package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of account kinds the backend issues.
// Every navigation and authorization decision switches on it exhaustively.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

const (
	LoginPath             = "/login"
	DashboardPath         = "/dashboard"
	CandidateHomePath     = "/"
	EmployerDashboardPath = "/employer/dashboard"
	AdminDashboardPath    = "/admin/dashboard"
)

var ErrUnknownRole = errors.New("auth: unknown role")

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleCandidate, RoleEmployer, RoleAdmin}
}

// ParseRole maps the backend's role string onto Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCandidate:
		return RoleCandidate, nil
	case RoleEmployer:
		return RoleEmployer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalText rejects roles outside the enum, so a profile carrying an
// unexpected role never reaches a guard.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// HomePath is where a freshly authenticated user lands.
func HomePath(r Role) string {
	switch r {
	case RoleAdmin:
		return AdminDashboardPath
	case RoleEmployer:
		return EmployerDashboardPath
	case RoleCandidate:
		return CandidateHomePath
	}
	return CandidateHomePath
}
