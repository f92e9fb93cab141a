package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/metrics"
)

// Recover returns a middleware that turns a handler panic into a JSON 500
// with error_type "unexpected". http.ErrAbortHandler is re-panicked so the
// server can abort the connection as usual.
func Recover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.HTTPPanicsRecovered.Inc()
				logging.Error("Panic serving %s %s (request %s): %v\n%s",
					r.Method, r.URL.Path, RequestIDFromContext(r.Context()), rec, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(w).Encode(map[string]string{
					"status":     "error",
					"error_type": "unexpected",
					"message":    "internal server error",
				}); err != nil {
					logging.Error("failed to encode panic response: %v", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
