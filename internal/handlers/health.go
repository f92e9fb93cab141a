package handlers

import (
	"net/http"
	"time"

	"ffmpeg-cuda-api/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"

	probeOK    = "ok"
	probeError = "error"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	FFmpeg     string `json:"ffmpeg"`
	GPU        string `json:"gpu"`
	GPUStatus  string `json:"gpu_status"`
	Workspace  string `json:"workspace"`
	APIVersion string `json:"api_version"`
	Version    string `json:"version"`
}

func probeStatus(ok bool) string {
	if ok {
		return probeOK
	}
	return probeError
}

// HealthCheck runs the encoder and GPU probes. A failed probe degrades the
// status but still answers 200, so the endpoint can be scraped for detail.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.prober.Health(r.Context())

	response := HealthResponse{
		Status:     statusHealthy,
		Timestamp:  h.now().UTC().Format(time.RFC3339),
		FFmpeg:     probeStatus(health.FFmpegOK),
		GPU:        health.GPUName,
		GPUStatus:  probeStatus(health.GPUOK),
		Workspace:  h.workspace.Root(),
		APIVersion: startup.APIVersion,
		Version:    startup.Version,
	}
	if !health.Healthy() {
		response.Status = statusDegraded
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the encoder binary can be found.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.prober.FFmpegResolvable() {
		writeJSONStatus(w, http.StatusOK, "ready")
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
}
