// Package httpapi exposes the backend's resources to the browser, one route
// group per role. Handlers call the backend with the requesting session's
// token and relay results unchanged.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobportal/internal/api"
	"jobportal/internal/middleware"
	"jobportal/internal/session"
)

type Handler struct {
	log *slog.Logger
}

func NewHandler(log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log}
}

// client returns the backend client of the request's session together with
// a snapshot of that session.
func client(c *gin.Context) (*api.Client, session.State) {
	m := middleware.ManagerFrom(c)
	return m.API(), m.State()
}

// pathID reads a UUID path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(c.Writer, http.StatusBadRequest, "invalid_id", name+" must be a UUID")
		return "", false
	}
	return id.String(), true
}

// opaqueID reads a non-UUID identifier such as a CV id.
func opaqueID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if id == "" || len(id) > 64 {
		WriteError(c.Writer, http.StatusBadRequest, "invalid_id", name+" is required")
		return "", false
	}
	return id, true
}

func respond(c *gin.Context, status int, payload any, err error) {
	if err != nil {
		WriteBackendError(c.Writer, err)
		return
	}
	WriteJSON(c.Writer, status, payload)
}

func respondEmpty(c *gin.Context, err error) {
	if err != nil {
		WriteBackendError(c.Writer, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindError(c *gin.Context, msg string) {
	WriteError(c.Writer, http.StatusBadRequest, "invalid_request", msg)
}
