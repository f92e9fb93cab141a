// Package metrics provides Prometheus instrumentation for the ffmpeg-cuda-api service.
//
// All metrics are registered on the default registry with promauto and are
// prefixed with "ffmpeg_api_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path template, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path template
//   - HTTPRequestsInFlight: Gauge of requests currently being served
//   - HTTPPanicsRecovered: Counter of handler panics turned into 500 responses
//
// ## Encode Metrics
//
//   - EncodeJobsTotal: Counter of encode requests by final status (success/error)
//   - EncodeErrorsTotal: Counter of failures by error_type
//   - EncodeJobDuration: Histogram of encoder wall-clock time
//   - EncodeJobsInProgress: Gauge of running encoder processes
//   - EncodeJobsQueued: Gauge of requests waiting for a worker slot
//   - EncodeOutputBytes: Histogram of produced output sizes
//   - EncodeCaptureTruncated: Counter of runs whose output capture hit the limit
//   - ConcatManifestsTotal: Counter of concat manifests written
//
// ## Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: job history queries by operation
//   - DBConnectionsOpen: Gauge of open SQLite connections
//   - DBJobRecords: Gauge of records in the job history
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver,
// labelled by volume (workspace, scratch, database, unknown).
//
// # Collector
//
// [Collector] polls a [StatsProvider] on an interval to refresh gauges that
// are too costly to maintain per request (workspace file count and size,
// history record count, GPU presence):
//
//	collector := metrics.NewCollector(provider, time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Encode failure ratio:
//
//	sum(rate(ffmpeg_api_encode_jobs_total{status="error"}[15m])) / sum(rate(ffmpeg_api_encode_jobs_total[15m]))
//
// P95 encode time:
//
//	histogram_quantile(0.95, sum(rate(ffmpeg_api_encode_job_duration_seconds_bucket[1h])) by (le))
//
// Timeouts per hour:
//
//	increase(ffmpeg_api_encode_errors_total{error_type="timeout"}[1h])
package metrics
