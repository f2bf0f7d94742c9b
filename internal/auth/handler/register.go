package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/httpapi"
	"jobportal/internal/middleware"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role"`
}

// Register creates the account and signs the browser in with it.
// Self-registration is limited to candidates and employers.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c.Writer, http.StatusBadRequest, "invalid_request", "email, password, first_name and last_name are required")
		return
	}

	role := auth.RoleCandidate
	if req.Role != "" {
		r, err := auth.ParseRole(req.Role)
		if err != nil || r == auth.RoleAdmin {
			httpapi.WriteError(c.Writer, http.StatusBadRequest, "invalid_role", "role must be candidate or employer")
			return
		}
		role = r
	}

	m := middleware.ManagerFrom(c)
	err := m.Register(c.Request.Context(), api.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	if err != nil {
		h.log.Info("register failed", "error", err)
		httpapi.WriteBackendError(c.Writer, err)
		return
	}

	st := m.State()
	h.log.Info("registered", "user_id", st.User.ID, "role", string(st.Role()))
	respondSession(c, http.StatusCreated, st)
}
