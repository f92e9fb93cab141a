package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ffmpeg-cuda-api/internal/metrics"
	"ffmpeg-cuda-api/internal/startup"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/sysprobe"
	"ffmpeg-cuda-api/internal/workspace"
)

// =============================================================================
// GetInfo Tests
// =============================================================================

func TestGetInfo(t *testing.T) {
	env := newTestEnv(t)
	env.prober.info = sysprobe.Info{
		FFmpegVersion:        "ffmpeg version 6.1",
		HardwareAccelerators: []string{"cuda"},
		NVENCEncoders:        []string{"h264_nvenc", "hevc_nvenc"},
		GPU:                  &sysprobe.GPUInfo{Name: "NVIDIA L4", MemoryTotalMB: 23034, MemoryUsedMB: 34, MemoryFreeMB: 23000},
		CUDAAvailable:        true,
	}

	w := httptest.NewRecorder()
	env.h.GetInfo(w, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var info sysprobe.Info
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.FFmpegVersion != "ffmpeg version 6.1" || !info.CUDAAvailable {
		t.Errorf("Unexpected info: %+v", info)
	}
	if len(info.NVENCEncoders) != 2 || info.GPU == nil || info.GPU.MemoryFreeMB != 23000 {
		t.Errorf("Unexpected encoders or GPU: %+v", info)
	}
}

func TestGetInfoWithoutTools(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.h.GetInfo(w, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))

	body := decodeBody(t, w)
	if body["cuda_available"] != false {
		t.Errorf("Expected cuda_available false, got %v", body["cuda_available"])
	}
	if _, ok := body["gpu"]; ok {
		t.Error("Expected gpu to be omitted when the query tool failed")
	}
}

// =============================================================================
// ListFiles Tests
// =============================================================================

func TestListFiles(t *testing.T) {
	env := newTestEnv(t)
	writeWorkspaceFile(t, env.root, "song.mp3", 1024*1024)
	writeWorkspaceFile(t, env.root, "clip.mp4", 512*1024)
	writeWorkspaceFile(t, env.root, "notes.txt", 10)
	if err := os.Mkdir(filepath.Join(env.root, "renders.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	env.h.ListFiles(w, httptest.NewRequest(http.MethodGet, "/files", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var listing workspace.Listing
	if err := json.NewDecoder(w.Body).Decode(&listing); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if listing.Total != 2 || len(listing.Files) != 2 {
		t.Fatalf("Expected 2 media files, got %+v", listing)
	}
	if listing.Files[0].Name != "clip.mp4" || listing.Files[1].Name != "song.mp3" {
		t.Errorf("Expected files sorted by name, got %s, %s", listing.Files[0].Name, listing.Files[1].Name)
	}
	if listing.Files[1].SizeBytes != 1024*1024 || listing.Files[1].SizeMB != 1 {
		t.Errorf("Unexpected size for song.mp3: %+v", listing.Files[1])
	}
	if listing.Workspace != env.root {
		t.Errorf("Expected workspace %q, got %q", env.root, listing.Workspace)
	}
	if listing.TotalSizeMB != 1.5 {
		t.Errorf("Expected total_size_mb 1.5, got %v", listing.TotalSizeMB)
	}
}

func TestListFilesWorkspaceMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	h := New(Dependencies{Workspace: workspace.New(missing)})

	w := httptest.NewRecorder()
	h.ListFiles(w, httptest.NewRequest(http.MethodGet, "/files", http.NoBody))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["error"] != "Workspace not found" || body["workspace"] != missing {
		t.Errorf("Unexpected body: %v", body)
	}
}

// =============================================================================
// GetStats Tests
// =============================================================================

func TestGetStats(t *testing.T) {
	recorder := stats.New()
	recorder.Start().Finish(true)
	recorder.Start().Finish(true)
	recorder.Start().Finish(false)

	h := New(Dependencies{Stats: recorder})

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	want := map[string]any{
		"total_encodings":      float64(3),
		"successful_encodings": float64(2),
		"failed_encodings":     float64(1),
		"success_rate":         66.7,
	}
	for key, value := range want {
		if body[key] != value {
			t.Errorf("%s = %v, want %v", key, body[key], value)
		}
	}
	for _, key := range []string{"start_time", "uptime_seconds", "uptime_hours"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Expected key %q", key)
		}
	}
}

func TestGetStatsReportsSlotUsage(t *testing.T) {
	env := newTestEnv(t)

	if err := env.limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer env.limiter.Release()

	w := httptest.NewRecorder()
	env.h.GetStats(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := SlotUsage{Capacity: 2, InUse: 1, Waiting: 0}
	if body.EncodeSlots != want {
		t.Errorf("encode_slots = %+v, want %+v", body.EncodeSlots, want)
	}
	if body.TotalEncodings != 0 {
		t.Errorf("total_encodings = %d, want 0", body.TotalEncodings)
	}
}

// =============================================================================
// GetVersion Tests
// =============================================================================

func TestGetVersion(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.h.GetVersion(w, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("got %+v, want %+v", info, startup.GetBuildInfo())
	}
	if info.APIVersion != startup.APIVersion {
		t.Errorf("api_version = %q, want %q", info.APIVersion, startup.APIVersion)
	}
}

// =============================================================================
// MetricsHandler Tests
// =============================================================================

func TestMetricsHandlerExportsEncodeSeries(t *testing.T) {
	env := newTestEnv(t)
	metrics.EncodeErrorsTotal.WithLabelValues("timeout").Add(0)

	w := httptest.NewRecorder()
	env.h.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`ffmpeg_api_encode_errors_total{error_type="timeout"}`,
		"ffmpeg_api_encode_jobs_queued",
		"promhttp_metric_handler_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
