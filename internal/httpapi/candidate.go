package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/cvconvert"
)

// RegisterCandidate mounts the candidate area: browsing offers, managing
// CVs, running the matcher and following applications.
func (h *Handler) RegisterCandidate(r gin.IRouter) {
	r.GET("/jobs", h.listJobs)
	r.GET("/jobs/:id", h.getJob)
	r.GET("/cvs", h.listOwnCVs)
	r.POST("/cvs", h.uploadCV)
	r.GET("/cvs/:id/download", h.downloadCV)
	r.POST("/match/run", h.runMatch)
	r.GET("/match/results", h.matchResults)
	r.GET("/applications", h.ownApplications)
	r.POST("/applications/generate", h.generateApplications)
}

func (h *Handler) listJobs(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.ListJobOffers(c.Request.Context())
	respond(c, http.StatusOK, nonNil(out), err)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cl, _ := client(c)
	out, err := cl.GetJobOffer(c.Request.Context(), id)
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) listOwnCVs(c *gin.Context) {
	cl, st := client(c)
	all, err := cl.ListCVs(c.Request.Context())
	if err != nil {
		WriteBackendError(c.Writer, err)
		return
	}
	own := make([]api.CV, 0, len(all))
	for _, cv := range all {
		if cv.UserID == st.User.ID {
			own = append(own, cv)
		}
	}
	WriteJSON(c.Writer, http.StatusOK, own)
}

func (h *Handler) uploadCV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cvconvert.MaxSize+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		bindError(c, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		bindError(c, "unreadable upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, cvconvert.MaxSize+1))
	if err != nil {
		bindError(c, "unreadable upload")
		return
	}

	name, pdf, err := cvconvert.PrepareUpload(fh.Filename, data)
	switch {
	case errors.Is(err, cvconvert.ErrTooLarge):
		WriteError(c.Writer, http.StatusRequestEntityTooLarge, "too_large", err.Error())
		return
	case err != nil:
		WriteError(c.Writer, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
		return
	}

	cl, st := client(c)
	out, err := cl.UploadCV(c.Request.Context(), name, pdf)
	if err == nil {
		h.log.Info("cv uploaded", "user_id", st.User.ID, "cv_id", out.CVID, "converted", name != fh.Filename)
	}
	respond(c, http.StatusCreated, out, err)
}

func (h *Handler) downloadCV(c *gin.Context) {
	id, ok := opaqueID(c, "id")
	if !ok {
		return
	}
	cl, _ := client(c)
	blob, err := cl.DownloadCV(c.Request.Context(), id)
	if err != nil {
		WriteBackendError(c.Writer, err)
		return
	}

	filename := blob.Filename
	if filename == "" {
		filename = id + ".pdf"
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, blob.Data)
}

func (h *Handler) runMatch(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.RunMatch(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) matchResults(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.GetMatchResults(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *Handler) ownApplications(c *gin.Context) {
	cl, st := client(c)
	out, err := cl.ListApplicationsByUser(c.Request.Context(), st.User.ID)
	respond(c, http.StatusOK, nonNil(out), err)
}

func (h *Handler) generateApplications(c *gin.Context) {
	cl, _ := client(c)
	out, err := cl.GenerateApplicationsFromMatches(c.Request.Context())
	respond(c, http.StatusOK, nonNil(out), err)
}

// nonNil keeps empty lists as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
