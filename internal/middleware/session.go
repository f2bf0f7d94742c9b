package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/session"
	"jobportal/internal/tokenstore"
)

const managerKey = "session.manager"

// SessionLoaderConfig wires the per-request session.
type SessionLoaderConfig struct {
	API      *api.Client
	Stores   tokenstore.Factory
	Cookie   session.CookieOptions
	Observer session.Observer
	Logger   *slog.Logger
}

// SessionLoader binds every request to a browser session. It issues the
// session cookie when missing, hydrates a Manager from that session's token
// store and stores the manager in the gin context.
func SessionLoader(cfg SessionLoaderConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		sid, ok := session.ReadCookie(c.Request)
		if !ok {
			id, err := session.NewID()
			if err != nil {
				log.Error("session id", "error", err)
				abortWithError(c, http.StatusInternalServerError, "internal_error", "could not start session")
				return
			}
			sid = id
		}
		// refresh on every request so the cookie lives as long as the store entry
		session.SetCookie(c.Writer, sid, cfg.Cookie)

		ctx := api.ContextWithRequestID(c.Request.Context(), RequestIDFrom(c))
		c.Request = c.Request.WithContext(ctx)

		m := session.NewManager(cfg.API, cfg.Stores.Scope(sid),
			session.WithLogger(log.With("request_id", RequestIDFrom(c))),
			session.WithObserver(cfg.Observer),
		)
		if ok {
			// a failed hydration leaves the manager logged out, which the
			// guards handle
			if err := m.Hydrate(ctx); err != nil {
				log.Info("session hydration failed", "error", err)
			}
		}

		c.Set(managerKey, m)
		c.Next()
	}
}

// ManagerFrom returns the session manager installed by SessionLoader.
func ManagerFrom(c *gin.Context) *session.Manager {
	v, ok := c.Get(managerKey)
	if !ok {
		return nil
	}
	m, _ := v.(*session.Manager)
	return m
}
