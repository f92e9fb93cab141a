// Package main provides the entry point for the FFmpeg CUDA API server.
//
// The server accepts encode requests over HTTP, builds an ffmpeg command line
// that decodes with CUDA and encodes with NVENC, runs it under a timeout and
// reports the outcome as JSON.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads the optional TOML file and environment
//     variables, checks the workspace and prepares scratch and database
//     directories
//  2. Metrics Initialization: Build info, start time, filesystem observer
//  3. Job History: Opens the SQLite job history (optional)
//  4. Component Initialization:
//     - Transcoder: Builds and supervises encoder runs
//     - Worker Limiter: Bounds concurrent encodes (ENCODE_WORKERS)
//     - System Probe: ffmpeg and nvidia-smi checks for /health and /info
//     - Metrics Collector: Refreshes workspace, history and GPU gauges
//  5. HTTP Server Setup: Routes, middleware and optional metrics server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 5000):
//     - Documentation page (/)
//     - Encode endpoint (/encode)
//     - Health, liveness and readiness checks
//     - Workspace listing, encoder info and counters
//     - Job history (/jobs)
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Graceful Shutdown
//
//  1. Stop metrics collector
//  2. Shutdown metrics server (if running)
//  3. Shutdown main HTTP server (30s timeout for in-flight encodes)
//  4. Kill encodes that are still running
//  5. Close the job history database
//
// # Build Requirements
//
// CGO is required for SQLite. ffmpeg built with CUDA and NVENC support and
// the NVIDIA driver tools must be available at runtime.
//
//	go build -o ffmpeg-cuda-api ./cmd/ffmpeg-cuda-api
//
// # Related Packages
//
//   - [ffmpeg-cuda-api/internal/transcoder]: Command construction and execution
//   - [ffmpeg-cuda-api/internal/handlers]: HTTP request handlers
//   - [ffmpeg-cuda-api/internal/database]: SQLite job history
//   - [ffmpeg-cuda-api/internal/middleware]: HTTP middleware
//   - [ffmpeg-cuda-api/internal/startup]: Configuration and initialization
package main
