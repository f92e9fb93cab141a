package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/logging"

	"github.com/gorilla/mux"
)

// JobListResponse is the body of GET /jobs.
type JobListResponse struct {
	Jobs  []database.Job `json:"jobs"`
	Count int            `json:"count"`
	Limit int            `json:"limit"`
}

// ListJobs returns the most recent jobs, newest first.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSONError(w, "job history is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := database.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = database.ClampLimit(n)
	}

	jobs, err := h.jobs.ListJobs(r.Context(), limit)
	if err != nil {
		logging.Error("Failed to list jobs: %v", err)
		writeJSONError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, JobListResponse{
		Jobs:  jobs,
		Count: len(jobs),
		Limit: limit,
	})
}

// GetJob returns one job by ID.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSONError(w, "job history is disabled", http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			writeJSONError(w, "job not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to get job %s: %v", id, err)
		writeJSONError(w, "failed to get job", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, job)
}
