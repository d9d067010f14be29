package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/jobs"
	"github.com/dvloznov/banking-coach/internal/pipeline"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store          jobs.JobStore
	publisher      jobs.Publisher
	exportsEnabled bool
	log            zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. exportsEnabled tells whether a
// statement bucket is configured.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, exportsEnabled bool, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:          store,
		publisher:      publisher,
		exportsEnabled: exportsEnabled,
		log:            log,
	}
}

// ExportStatement handles POST /api/v1/exports/statement
func (h *JobsHandler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	if !h.exportsEnabled {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement exports are not configured")
		return
	}

	var req struct {
		AccountNumber string `json:"account_number"`
		Month         string `json:"month"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	if req.AccountNumber == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_number is required")
		return
	}
	params := map[string]string{pipeline.ParamAccountNumber: req.AccountNumber}
	if req.Month != "" {
		if _, err := time.Parse(pipeline.MonthLayout, req.Month); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		params[pipeline.ParamMonth] = req.Month
	}

	h.enqueue(w, r, &jobs.Job{Type: jobs.JobTypeExportStatement, UserID: claims.UserID(), Params: params})
}

// CreateJob handles POST /api/v1/jobs for the jobs that need no extra input:
// archetype refresh and goal sync.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Type   jobs.JobType `json:"type"`
		DryRun bool         `json:"dry_run"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type != jobs.JobTypeRefreshArchetype && req.Type != jobs.JobTypeSyncGoals {
		middleware.WriteError(w, http.StatusBadRequest, "type must be refresh_archetype or sync_goals")
		return
	}

	job := &jobs.Job{Type: req.Type, UserID: claims.UserID()}
	if req.Type == jobs.JobTypeSyncGoals {
		job.Params = map[string]string{pipeline.ParamDryRun: strconv.FormatBool(req.DryRun)}
	}
	h.enqueue(w, r, job)
}

func (h *JobsHandler) enqueue(w http.ResponseWriter, r *http.Request, job *jobs.Job) {
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("job_type", string(job.Type)).Msg("Failed to enqueue job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("job_type", string(job.Type)).Str("user_id", job.UserID).Msg("Job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"type":   string(job.Type),
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/v1/jobs/{id}. Jobs of other users are reported as
// missing.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	jobID := r.PathValue("id")
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil || job.UserID != claims.UserID() {
		h.log.Debug().Err(err).Str("job_id", jobID).Msg("Job not visible")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: claims.UserID(),
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
