package handlers

import "net/http"

// NotFound answers unknown routes with the list of known endpoints.
func (h *Handlers) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusNotFound, map[string]any{
		"error":               "Endpoint not found",
		"available_endpoints": EndpointPaths(),
	})
}

// MethodNotAllowed answers a known route called with the wrong method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusMethodNotAllowed, map[string]string{
		"error":  "Method not allowed",
		"method": r.Method,
		"path":   r.URL.Path,
	})
}
