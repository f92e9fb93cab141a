// Package transcoder turns JSON encode requests into supervised ffmpeg runs.
//
// A request goes through a fixed pipeline:
//   - decoding and validation of the request body
//   - resolution of input and output references against the workspace
//   - a concat manifest for "concat:a|b|c" inputs, removed after the run
//   - synthesis of the ffmpeg argument vector (NVENC aware)
//   - execution with a wall-clock ceiling and bounded output capture
//   - classification of the run from its exit status and the output file
//
// Every failure is returned as an *Error whose Kind says which stage
// rejected the job. The HTTP layer maps kinds to status codes.
//
// The encoder process is started in its own process group so that a
// timeout or shutdown kills ffmpeg together with anything it spawned.
package transcoder
