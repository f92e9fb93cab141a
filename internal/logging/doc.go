// Package logging provides the leveled logger used across ffmpeg-cuda-api.
//
// Levels, lowest to highest:
//   - DEBUG: command lines, probe output, route tables
//   - INFO: job lifecycle and startup sections
//   - WARN: degraded collaborators (missing GPU, unwritable scratch space)
//   - ERROR: failed jobs and I/O errors
//   - FATAL: startup errors that terminate the process
//
// The level comes from DEBUG=true or LOG_LEVEL (debug, info, warn, error).
// Messages go through the standard library log package so they share its
// timestamp prefix and output writer.
package logging
