// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded by [LoadConfig] from an optional TOML file named by
// CONFIG_FILE, then overridden by environment variables:
//
//   - WORKSPACE_DIR: Directory relative encode paths resolve against (default: /workspace)
//   - SCRATCH_DIR: Directory for concat manifests (default: $TMPDIR/ffmpeg-cuda-api)
//   - DATABASE_DIR: Directory holding the job history database (default: /database)
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - ENCODER_BINARY: Encoder executable (default: ffmpeg)
//   - GPU_QUERY_BINARY: GPU query tool (default: nvidia-smi)
//   - ENCODE_TIMEOUT: Per-job wall-clock limit as Go duration (default: 1h)
//   - ENCODE_WORKERS: Concurrent encode slots (default: 2)
//   - MAX_CAPTURE_BYTES: Captured output kept per stream (default: 4194304)
//   - HISTORY_ENABLED: Persist finished jobs to SQLite (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// The TOML keys are the lower-case variable names, e.g. encode_timeout = "30m".
//
// # Directory Setup
//
//   - Workspace directory: checked but not created (should be mounted)
//   - Scratch directory: created if missing
//   - Database directory: created if missing; job history is disabled when
//     it is not writable
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
