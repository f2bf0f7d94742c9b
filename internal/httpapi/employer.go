package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/session"
)

// RegisterEmployer mounts the employer area: the employer's own job offers
// and the applicants to each.
func (h *Handler) RegisterEmployer(r gin.IRouter) {
	r.GET("/jobs", h.listOwnJobs)
	r.POST("/jobs", h.createJob)
	r.GET("/jobs/:id", h.getJob)
	r.PUT("/jobs/:id", h.updateJob)
	r.DELETE("/jobs/:id", h.deleteJob)
	r.GET("/jobs/:id/applications", h.jobApplications)
}

type jobRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Criteria    json.RawMessage `json:"criteria"`
}

func (r jobRequest) input() api.JobOfferInput {
	criteria := r.Criteria
	if len(bytes.TrimSpace(criteria)) == 0 || bytes.Equal(criteria, []byte("null")) {
		criteria = json.RawMessage(`""`)
	}
	return api.JobOfferInput{Title: r.Title, Description: r.Description, Criteria: criteria}
}

func (h *Handler) listOwnJobs(c *gin.Context) {
	cl, st := client(c)
	all, err := cl.ListJobOffers(c.Request.Context())
	if err != nil {
		WriteBackendError(c.Writer, err)
		return
	}
	own := make([]api.JobOffer, 0, len(all))
	for _, o := range all {
		if o.CreatedBy == st.User.ID {
			own = append(own, o)
		}
	}
	WriteJSON(c.Writer, http.StatusOK, own)
}

func (h *Handler) createJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "title and description are required")
		return
	}
	cl, _ := client(c)
	out, err := cl.CreateJobOffer(c.Request.Context(), req.input())
	respond(c, http.StatusCreated, out, err)
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "title and description are required")
		return
	}
	cl, st := client(c)
	if !ownOffer(c, cl, st, id) {
		return
	}
	out, err := cl.UpdateJobOffer(c.Request.Context(), id, req.input())
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, st := client(c)
	if !ownOffer(c, cl, st, id) {
		return
	}
	respondEmpty(c, cl.DeleteJobOffer(c.Request.Context(), id))
}

func (h *Handler) jobApplications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, st := client(c)
	if !ownOffer(c, cl, st, id) {
		return
	}
	out, err := cl.ListApplicationsByOffer(c.Request.Context(), id)
	respond(c, http.StatusOK, nonNil(out), err)
}

// ownOffer answers 404 unless offer id was created by the session user,
// the same scope listOwnJobs shows.
func ownOffer(c *gin.Context, cl *api.Client, st session.State, id string) bool {
	offer, err := cl.GetJobOffer(c.Request.Context(), id)
	if err != nil {
		WriteBackendError(c.Writer, err)
		return false
	}
	if offer.CreatedBy != st.User.ID {
		WriteError(c.Writer, http.StatusNotFound, "not_found", "job offer not found")
		return false
	}
	return true
}
