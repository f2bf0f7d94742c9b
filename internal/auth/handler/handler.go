package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/httpapi"
	"jobportal/internal/middleware"
	"jobportal/internal/session"
)

// Handler serves the gateway's sign-in surface. Every route acts on the
// session manager SessionLoader attached to the request.
type Handler struct {
	api    *api.Client
	cookie session.CookieOptions
	log    *slog.Logger
}

func NewHandler(client *api.Client, cookie session.CookieOptions, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{api: client, cookie: cookie, log: log}
}

// RegisterRoutes mounts the auth routes. private guards /me.
func (h *Handler) RegisterRoutes(r gin.IRouter, private gin.HandlerFunc) {
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)
	r.GET("/login/success", h.LoginSuccess)
	r.GET("/auth/google/login", h.GoogleLogin)
	r.GET("/me", private, h.Me)
}

type sessionResponse struct {
	User     *auth.User `json:"user"`
	Redirect string     `json:"redirect"`
}

func respondSession(c *gin.Context, status int, st session.State) {
	httpapi.WriteJSON(c.Writer, status, sessionResponse{
		User:     st.User,
		Redirect: auth.HomePath(st.Role()),
	})
}

// Logout ends the session. It always succeeds from the browser's view.
func (h *Handler) Logout(c *gin.Context) {
	if m := middleware.ManagerFrom(c); m != nil {
		if err := m.Logout(c.Request.Context()); err != nil {
			h.log.Warn("logout: clear token", "error", err)
		}
	}
	session.ClearCookie(c.Writer, h.cookie)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	st := middleware.ManagerFrom(c).State()
	if st.User == nil {
		httpapi.WriteError(c.Writer, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}
	httpapi.WriteJSON(c.Writer, http.StatusOK, st.User)
}

// GoogleLogin hands the browser to the backend's Google flow, which comes
// back through /login/success.
func (h *Handler) GoogleLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.api.GoogleLoginURL())
}

// LoginSuccess is the OAuth landing page: it adopts ?token= and sends the
// browser to its role's home, or back to /login when the token is unusable.
func (h *Handler) LoginSuccess(c *gin.Context) {
	m := middleware.ManagerFrom(c)
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}

	if err := m.Adopt(c.Request.Context(), token); err != nil {
		h.log.Info("oauth landing rejected", "error", err)
		c.Redirect(http.StatusSeeOther, auth.LoginPath)
		return
	}
	c.Redirect(http.StatusSeeOther, auth.HomePath(m.State().Role()))
}
