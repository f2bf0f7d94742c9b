package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/httpapi"
	"jobportal/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c.Writer, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	m := middleware.ManagerFrom(c)
	if err := m.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.log.Info("login failed", "error", err)
		httpapi.WriteBackendError(c.Writer, err)
		return
	}

	st := m.State()
	h.log.Info("login", "user_id", st.User.ID, "role", string(st.Role()), "ip", c.ClientIP())
	respondSession(c, http.StatusOK, st)
}
