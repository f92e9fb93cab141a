// Package middleware provides HTTP middleware for the encode API.
//
// It includes:
//   - Request IDs (X-Request-ID), generated with google/uuid when absent
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by mux route template
//   - Panic recovery into JSON "unexpected" errors
//   - gzip compression for JSON and HTML responses
package middleware
