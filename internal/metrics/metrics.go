package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 300, 900, 1800, 3600},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPPanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_http_panics_recovered_total",
			Help: "Total number of handler panics converted into 500 responses",
		},
	)
)

// Encode metrics
var (
	EncodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_encode_jobs_total",
			Help: "Total number of encode requests by final status",
		},
		[]string{"status"}, // "success", "error"
	)

	EncodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_encode_errors_total",
			Help: "Total number of failed encode requests by error type",
		},
		[]string{"error_type"},
	)

	EncodeJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_encode_job_duration_seconds",
			Help:    "Wall-clock duration of encoder invocations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800, 2700, 3600},
		},
		[]string{"status"},
	)

	EncodeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_encode_jobs_in_progress",
			Help: "Number of encoder processes currently running",
		},
	)

	EncodeJobsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_encode_jobs_queued",
			Help: "Number of encode requests waiting for a free worker slot",
		},
	)

	EncodeOutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_encode_output_bytes",
			Help:    "Size of successfully produced output files in bytes",
			Buckets: prometheus.ExponentialBuckets(1<<20, 4, 10), // 1MiB .. 256GiB
		},
	)

	EncodeCaptureTruncated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_encode_capture_truncated_total",
			Help: "Total number of encoder runs whose captured output exceeded the capture limit",
		},
		[]string{"stream"}, // "stdout", "stderr"
	)

	ConcatManifestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_concat_manifests_total",
			Help: "Total number of concat manifests written",
		},
		[]string{"status"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_db_queries_total",
			Help: "Total number of job history queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_db_query_duration_seconds",
			Help:    "Job history query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBJobRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_db_job_records",
			Help: "Number of job records held in the history database",
		},
	)
)

// Workspace metrics
var (
	WorkspaceFilesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_workspace_files",
			Help: "Number of media files in the workspace directory",
		},
	)

	WorkspaceSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_workspace_size_bytes",
			Help: "Total size of media files in the workspace directory",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume and operation type",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_filesystem_operation_errors_total",
			Help: "Total filesystem operation errors by volume and operation type",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after a stale NFS handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ffmpeg_api_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors seen",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ffmpeg_api_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retrying filesystem operations, including backoff",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)

	GPUAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_gpu_available",
			Help: "Whether the GPU query tool reported a device at last probe (1 = yes, 0 = no)",
		},
	)

	ServiceStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ffmpeg_api_start_time_seconds",
			Help: "Unix timestamp at which the service started",
		},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
