// Package guard decides, from a session snapshot, whether a protected view
// may render, must wait for the session to settle, or must send the user
// elsewhere.
package guard

import (
	"slices"

	"jobportal/internal/auth"
	"jobportal/internal/session"
)

type Outcome int

const (
	Render Outcome = iota
	Wait
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is what a guard tells the caller to do. Target and Replace are
// set only for Redirect; Replace means the guarded location must not stay
// in history.
type Decision struct {
	Outcome Outcome
	Target  string
	Replace bool
}

// Guard is a pure function of the session state.
type Guard func(session.State) Decision

var (
	render = Decision{Outcome: Render}
	wait   = Decision{Outcome: Wait}
)

func redirect(target string, replace bool) Decision {
	return Decision{Outcome: Redirect, Target: target, Replace: replace}
}

// AdminRoute admits administrators only.
func AdminRoute(s session.State) Decision {
	return roleRoute(s, auth.RoleAdmin)
}

// EmployerRoute admits employers only.
func EmployerRoute(s session.State) Decision {
	return roleRoute(s, auth.RoleEmployer)
}

func roleRoute(s session.State, want auth.Role) Decision {
	switch {
	case s.Loading:
		return wait
	case s.Token == "" || s.User == nil:
		return redirect(auth.LoginPath, true)
	case s.User.Role != want:
		return redirect(auth.DashboardPath, true)
	default:
		return render
	}
}

// ClientRoute admits candidates. Everyone else is pushed to the login page.
func ClientRoute(s session.State) Decision {
	switch {
	case s.Loading:
		return wait
	case s.User == nil || s.User.Role != auth.RoleCandidate:
		return redirect(auth.LoginPath, false)
	default:
		return render
	}
}

// Roles admits any of the listed roles. Users with another role go to the
// candidate home.
func Roles(allowed ...auth.Role) Guard {
	allowed = slices.Clone(allowed)
	return func(s session.State) Decision {
		switch {
		case s.Loading:
			return wait
		case s.User == nil:
			return redirect(auth.LoginPath, true)
		case !slices.Contains(allowed, s.User.Role):
			return redirect(auth.CandidateHomePath, true)
		default:
			return render
		}
	}
}

// Private admits any session holding a token.
func Private(s session.State) Decision {
	switch {
	case s.Loading:
		return wait
	case s.Token == "":
		return redirect(auth.LoginPath, true)
	default:
		return render
	}
}

// ForRole picks the guard matching a role's home area.
func ForRole(r auth.Role) Guard {
	switch r {
	case auth.RoleAdmin:
		return AdminRoute
	case auth.RoleEmployer:
		return EmployerRoute
	default:
		return ClientRoute
	}
}
