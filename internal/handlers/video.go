// Package handlers exposes the HTTP API: submission, job retrieval, status
// polling and the synchronous resolve endpoint.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"linkvid/internal/mediastore"
	"linkvid/internal/models"
	"linkvid/internal/scrape"
	"linkvid/internal/service"
	"linkvid/internal/storage"
	"linkvid/internal/version"
)

// VideoHandler handles the LinkedIn video download endpoints.
type VideoHandler struct {
	orch     *service.Orchestrator
	jobs     *storage.JobRepository
	metadata *storage.MetadataRepository
	hashtags *storage.HashtagRepository
	store    *mediastore.Store
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(
	orch *service.Orchestrator,
	jobs *storage.JobRepository,
	metadata *storage.MetadataRepository,
	hashtags *storage.HashtagRepository,
	store *mediastore.Store,
) *VideoHandler {
	return &VideoHandler{orch: orch, jobs: jobs, metadata: metadata, hashtags: hashtags, store: store}
}

// SubmitRequest is the body of POST /linkedin-video/.
type SubmitRequest struct {
	PostURL          string `json:"post_url"`
	LinkedInEmail    string `json:"linkedin_email,omitempty"`
	LinkedInPassword string `json:"linkedin_password,omitempty"`
}

// JobResponse is the full job representation: job fields plus the metadata
// object and attached hashtags. Credentials never appear.
type JobResponse struct {
	models.Job
	Metadata *models.JobMetadata `json:"metadata"`
	Hashtags []TagResponse       `json:"hashtags"`
}

// TagResponse is one hashtag in a job representation.
type TagResponse struct {
	Name string `json:"name"`
}

// StatusResponse is the compact payload for jobs that are not completed yet.
type StatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     *string   `json:"error,omitempty"`
}

// Submit handles job submission
// POST /linkedin-video/
func (h *VideoHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.PostURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post_url is required"})
	}

	job, err := h.orch.Submit(ctx, service.SubmitRequest{
		PostURL:          req.PostURL,
		LinkedInEmail:    req.LinkedInEmail,
		LinkedInPassword: req.LinkedInPassword,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPostURL) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	resp, err := h.buildJobResponse(ctx, job)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get returns the full job representation
// GET /linkedin-video/?id=<id>
func (h *VideoHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	job, err := h.lookupJob(c)
	if job == nil {
		return err
	}

	resp, err := h.buildJobResponse(ctx, job)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// Status returns the polling payload: the full representation once the job
// completed, a compact status object before that
// GET /task-status/?id=<id>
func (h *VideoHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	job, err := h.lookupJob(c)
	if job == nil {
		return err
	}

	if job.Status == models.JobStatusCompleted {
		resp, err := h.buildJobResponse(ctx, job)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, resp)
	}

	status := StatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == models.JobStatusFailed {
		status.Error = job.ErrorMessage
	}
	return c.JSON(http.StatusOK, status)
}

// ResolveRequest is the body of POST /video-download-url/.
type ResolveRequest struct {
	URL      string `json:"url"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Resolve resolves a post's video URL synchronously without creating a job
// POST /video-download-url/
func (h *VideoHandler) Resolve(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	downloadURL, err := h.orch.ResolveDownloadURL(ctx, req.URL, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPostURL):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, scrape.ErrNoVideo):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no video found in post"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"downloadable_url": downloadURL,
		"post_url":         req.URL,
	})
}

// Delete removes a job and its stored video file
// DELETE /linkedin-video/?id=<id>
func (h *VideoHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	job, err := h.lookupJob(c)
	if job == nil {
		return err
	}

	if job.VideoFile != nil {
		if err := h.store.Remove(*job.VideoFile); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	// Metadata and hashtag links go with the row via cascade
	if err := h.jobs.Delete(ctx, job.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Health reports liveness and the queue depth per status
// GET /health
func (h *VideoHandler) Health(c echo.Context) error {
	resp := map[string]any{
		"status":  "ok",
		"version": version.Version,
	}
	if counts, err := h.jobs.CountByStatus(c.Request().Context()); err == nil {
		resp["jobs"] = counts
	}
	return c.JSON(http.StatusOK, resp)
}

// lookupJob reads the id query parameter and loads the job. On failure the
// error response has already been written and the returned job is nil.
func (h *VideoHandler) lookupJob(c echo.Context) (*models.Job, error) {
	id := c.QueryParam("id")
	if id == "" {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "id is required"})
	}

	job, err := h.jobs.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	return job, nil
}

func (h *VideoHandler) buildJobResponse(ctx context.Context, job *models.Job) (*JobResponse, error) {
	meta, err := h.metadata.GetByJobID(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	tags, err := h.hashtags.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	tagResponses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		tagResponses = append(tagResponses, TagResponse{Name: tag.Name})
	}

	return &JobResponse{Job: *job, Metadata: meta, Hashtags: tagResponses}, nil
}
