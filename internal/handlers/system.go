package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/startup"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/workspace"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GetInfo reports the encoder version, hardware accelerators, NVENC
// encoders and GPU memory.
func (h *Handlers) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.prober.Info(r.Context()))
}

// ListFiles returns the media files in the workspace.
func (h *Handlers) ListFiles(w http.ResponseWriter, _ *http.Request) {
	listing, err := h.workspace.List()
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		if errors.Is(err, workspace.ErrNotFound) {
			status = http.StatusNotFound
			message = "Workspace not found"
		} else {
			logging.Error("Failed to list workspace: %v", err)
		}

		writeJSONResponse(w, status, map[string]string{
			"error":     message,
			"workspace": h.workspace.Root(),
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, listing)
}

// SlotUsage reports encode slot occupancy.
type SlotUsage struct {
	Capacity int `json:"capacity"`
	InUse    int `json:"in_use"`
	Waiting  int `json:"waiting"`
}

// StatsResponse is the /stats body: the encode counters plus current slot usage.
type StatsResponse struct {
	stats.Snapshot
	EncodeSlots SlotUsage `json:"encode_slots"`
}

// GetStats returns the encode counters since startup and the current slot usage.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, StatsResponse{
		Snapshot:    h.stats.Snapshot(),
		EncodeSlots: SlotUsage{
			Capacity: h.limiter.Capacity(),
			InUse:    h.limiter.InUse(),
			Waiting:  h.limiter.Waiting(),
		},
	})
}

// GetVersion returns the build information. Clients poll it after deploys,
// so it is never cached.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, http.StatusOK, startup.GetBuildInfo())
}

// MetricsHandler serves the default Prometheus registry for the metrics
// port. Scrape errors are logged and the remaining metrics still served.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:      promErrorLogger{},
			ErrorHandling: promhttp.ContinueOnError,
		}),
	)
}

// promErrorLogger routes promhttp errors into the application log.
type promErrorLogger struct{}

func (promErrorLogger) Println(v ...interface{}) {
	logging.Error("metrics scrape: %s", fmt.Sprint(v...))
}
