package metrics

// Volume labels used by the filesystem volume resolver.
var Volumes = []string{"workspace", "scratch", "database", "unknown"}

// ErrorTypes lists the error_type label values for encode failures.
var ErrorTypes = []string{"validation", "input_not_found", "manifest_write", "timeout", "encode_failed", "unexpected"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		EncodeJobsTotal.WithLabelValues(status)
		EncodeJobDuration.WithLabelValues(status)
		ConcatManifestsTotal.WithLabelValues(status)
	}

	for _, et := range ErrorTypes {
		EncodeErrorsTotal.WithLabelValues(et)
	}

	for _, stream := range []string{"stdout", "stderr"} {
		EncodeCaptureTruncated.WithLabelValues(stream)
	}

	fsOps := []string{"stat", "readdir"}
	for _, vol := range Volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"initialize_schema", "insert_job", "get_job", "list_jobs",
		"count_by_status", "prune_jobs"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
