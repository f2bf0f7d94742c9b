package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/auth"
)

// RegisterAdmin mounts user management and moderation of every resource.
func (h *Handler) RegisterAdmin(r gin.IRouter) {
	r.GET("/users", h.listUsers)
	r.POST("/users", h.createUser)
	r.GET("/users/:id", h.getUser)
	r.PUT("/users/:id", h.updateUser)
	r.DELETE("/users/:id", h.deleteUser)

	r.GET("/jobs", h.listJobs)
	r.DELETE("/jobs/:id", h.deleteJob)

	r.GET("/applications", h.listApplications)
	r.DELETE("/applications/:id", h.deleteApplication)

	r.GET("/cvs", h.listCVs)
	r.GET("/cvs/:id/download", h.downloadCV)
}

type userRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (r userRequest) role() (auth.Role, bool) {
	if r.Role == "" {
		return "", true
	}
	role, err := auth.ParseRole(r.Role)
	return role, err == nil
}

func (h *Handler) listUsers(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.ListUsers(c.Request.Context())
	respond(c, http.StatusOK, nonNil(out), err)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, _ := client(c)
	out, err := cl.GetUser(c.Request.Context(), id)
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		bindError(c, "email and password are required")
		return
	}
	role, ok := req.role()
	if !ok {
		WriteError(c.Writer, http.StatusBadRequest, "invalid_role", "unknown role")
		return
	}
	if role == "" {
		role = auth.RoleCandidate
	}

	cl, _ := client(c)
	out, err := cl.CreateUser(c.Request.Context(), api.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	respond(c, http.StatusCreated, out, err)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "invalid user payload")
		return
	}
	role, ok := req.role()
	if !ok {
		WriteError(c.Writer, http.StatusBadRequest, "invalid_role", "unknown role")
		return
	}

	cl, _ := client(c)
	out, err := cl.UpdateUser(c.Request.Context(), id, api.UserUpdate{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, st := client(c)
	if id == st.User.ID {
		WriteError(c.Writer, http.StatusConflict, "self_delete", "administrators cannot delete their own account")
		return
	}
	err := cl.DeleteUser(c.Request.Context(), id)
	if err == nil {
		h.log.Info("user deleted", "by", st.User.ID, "user_id", id)
	}
	respondEmpty(c, err)
}

func (h *Handler) listApplications(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.ListApplications(c.Request.Context())
	respond(c, http.StatusOK, nonNil(out), err)
}

func (h *Handler) deleteApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, _ := client(c)
	respondEmpty(c, cl.DeleteApplication(c.Request.Context(), id))
}

func (h *Handler) listCVs(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.ListCVs(c.Request.Context())
	respond(c, http.StatusOK, nonNil(out), err)
}
