// Package handlers provides the HTTP handlers of the encode API.
//
// It includes handlers for:
//   - Encode jobs (POST /encode) and their history (/jobs)
//   - Health, liveness and readiness probes
//   - Environment introspection (/info) and workspace listing (/files)
//   - Encode statistics, build version and Prometheus metrics
//   - The HTML documentation page and JSON 404/405 responses
//
// Handlers depend on small interfaces ([Encoder], [JobStore],
// [SystemProber]) so they can be tested without an encoder or GPU.
package handlers
