package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// writeJSON Tests
// =============================================================================

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"Simple map", map[string]string{"status": "ok"}, `{"status":"ok"}`},
		{"String slice", []string{"a", "b", "c"}, `["a","b","c"]`},
		{"Number", 42, `42`},
		{"Null", nil, `null`},
		{"Empty slice", []string{}, `[]`},
		{"HTML is escaped", map[string]string{"filter": "a<b"}, `{"filter":"a\u003cb"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			writeJSON(w, tt.input)

			if got := strings.TrimSpace(w.Body.String()); got != tt.expected {
				t.Errorf("writeJSON() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestWriteJSONHandlesInvalidTypes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSON(w, math.Inf(1))

	if w.Body.Len() != 0 {
		t.Errorf("Expected no body for an unencodable value, got %q", w.Body.String())
	}
}

// =============================================================================
// writeJSONResponse / writeJSONError / writeJSONStatus Tests
// =============================================================================

func TestWriteJSONResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONResponse(w, http.StatusAccepted, map[string]int{"queued": 1})

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"queued":1}` {
		t.Errorf("Unexpected body %s", got)
	}
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONError(w, "job not found", http.StatusNotFound)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["error"] != "job not found" {
		t.Errorf("Expected error message, got %v", body)
	}
}

func TestWriteJSONStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   int
		status string
	}{
		{http.StatusOK, "ready"},
		{http.StatusServiceUnavailable, "not_ready"},
		{http.StatusOK, "status with \"quotes\""},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			writeJSONStatus(w, tt.code, tt.status)

			if w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body["status"] != tt.status {
				t.Errorf("Expected status %q, got %q", tt.status, body["status"])
			}
		})
	}
}

// =============================================================================
// Rounding Tests
// =============================================================================

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  float64
		places int
		want   float64
	}{
		{1.234, 2, 1.23},
		{1.235001, 2, 1.24},
		{0.04, 1, 0},
		{12.96, 1, 13},
	}

	for _, tt := range tests {
		if got := round(tt.value, tt.places); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
		}
	}
}

func TestBytesToMB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  float64
	}{
		{0, 0},
		{1024 * 1024, 1},
		{1536 * 1024, 1.5},
		{10 * 1024, 0},
		{123456789, 117.7},
	}

	for _, tt := range tests {
		if got := bytesToMB(tt.bytes); got != tt.want {
			t.Errorf("bytesToMB(%d) = %v, want %v", tt.bytes, got, tt.want)
		}
	}
}
