package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal/internal/auth"
	"jobportal/internal/guard"
	"jobportal/internal/session"
)

// DecisionRecorder is told about every guard evaluation.
type DecisionRecorder interface {
	GuardDecision(guard, outcome string)
}

// RequireGuard evaluates g against the request's session.
//
//	Render   -> next handler
//	Wait     -> 202 {"status":"loading"}
//	Redirect -> 303 for browsers navigating, otherwise 401 (login) or 403
//	            with the redirect target in the body
func RequireGuard(name string, g guard.Guard, rec DecisionRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state session.State
		if m := ManagerFrom(c); m != nil {
			state = m.State()
		}

		d := g(state)
		if rec != nil {
			rec.GuardDecision(name, d.Outcome.String())
		}

		switch d.Outcome {
		case guard.Render:
			c.Next()
		case guard.Wait:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "loading"})
		default:
			redirect(c, d)
		}
	}
}

func redirect(c *gin.Context, d guard.Decision) {
	if wantsHTML(c.Request) {
		c.Redirect(http.StatusSeeOther, d.Target)
		c.Abort()
		return
	}

	status, code, msg := http.StatusForbidden, "forbidden", "role not allowed here"
	if d.Target == auth.LoginPath {
		status, code, msg = http.StatusUnauthorized, "unauthorized", "login required"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":    gin.H{"code": code, "message": msg},
		"redirect": d.Target,
		"replace":  d.Replace,
	})
}

// wantsHTML is true for top-level browser navigation.
func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func abortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}
