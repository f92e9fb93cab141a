package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"workspace": "/workspace",
		"scratch":   "/tmp/ffmpeg-cuda-api",
		"database":  "/database",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"workspace root", "/workspace", "workspace"},
		{"workspace file", "/workspace/clips/a.mp4", "workspace"},
		{"scratch manifest", "/tmp/ffmpeg-cuda-api/concat-1.txt", "scratch"},
		{"database file", "/database/jobs.db-wal", "database"},
		{"sibling prefix is not a match", "/workspace2/a.mp4", "unknown"},
		{"other tmp path", "/tmp/other", "unknown"},
		{"root path", "/", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_LongestPrefixWins(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"workspace": "/data",
		"scratch":   "/data/scratch",
	})

	if got := vr.Resolve("/data/scratch/concat-1.txt"); got != "scratch" {
		t.Errorf("Resolve() = %q, want scratch", got)
	}
	if got := vr.Resolve("/data/movie.mkv"); got != "workspace" {
		t.Errorf("Resolve() = %q, want workspace", got)
	}
}

func TestVolumeResolver_SkipsEmptyPaths(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"workspace": "/workspace",
		"database":  "",
	})

	if len(vr.mounts) != 1 {
		t.Errorf("expected 1 mount, got %d", len(vr.mounts))
	}
}

func TestVolumeResolver_NilResolver(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/workspace/a.mp4"); got != "unknown" {
		t.Errorf("nil resolver Resolve() = %q, want unknown", got)
	}
}

func TestRetryConfig_ResolveVolume(t *testing.T) {
	original := defaultResolver
	defer func() { defaultResolver = original }()

	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"workspace": "/workspace"}))

	fallback := RetryConfig{}
	if got := fallback.resolveVolume("/workspace/a.mp4"); got != "workspace" {
		t.Errorf("resolveVolume() = %q, want workspace from default resolver", got)
	}

	override := RetryConfig{VolumeResolver: NewVolumeResolver(map[string]string{"scratch": "/workspace"})}
	if got := override.resolveVolume("/workspace/a.mp4"); got != "scratch" {
		t.Errorf("resolveVolume() = %q, want scratch from config resolver", got)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	ops      int
	attempts int
	success  int
	failures int
	stale    int
}

func (r *recordingObserver) ObserveOperation(string, string, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops++
}

func (r *recordingObserver) ObserveRetryAttempt(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
}

func (r *recordingObserver) ObserveRetrySuccess(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
}

func (r *recordingObserver) ObserveRetryFailure(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *recordingObserver) ObserveRetryDuration(string, string, float64) {}

func (r *recordingObserver) ObserveStaleError(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale++
}

func useObserver(t *testing.T) *recordingObserver {
	t.Helper()
	obs := &recordingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })
	return obs
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestWithRetry_RecoversFromStaleHandle(t *testing.T) {
	obs := useObserver(t)

	calls := 0
	got, err := withRetry("stat", "/workspace/a.mp4", fastRetry(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &os.PathError{Op: "stat", Path: "/workspace/a.mp4", Err: syscall.ESTALE}
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if got != 42 {
		t.Errorf("withRetry() = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
	if obs.stale != 2 || obs.attempts != 2 || obs.success != 1 || obs.failures != 0 {
		t.Errorf("observer = %+v, want stale=2 attempts=2 success=1 failures=0", obs)
	}
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	obs := useObserver(t)

	calls := 0
	_, err := withRetry("readdir", "/workspace", fastRetry(), func() (string, error) {
		calls++
		return "", syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("fn called %d times, want 4 (1 + 3 retries)", calls)
	}
	if obs.failures != 1 {
		t.Errorf("failures = %d, want 1", obs.failures)
	}
	if obs.attempts != 3 {
		t.Errorf("attempts = %d, want 3", obs.attempts)
	}
}

func TestWithRetry_DoesNotRetryOtherErrors(t *testing.T) {
	obs := useObserver(t)

	calls := 0
	_, err := withRetry("stat", "/x", fastRetry(), func() (int, error) {
		calls++
		return 0, fmt.Errorf("permission: %w", os.ErrPermission)
	})

	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("withRetry() error = %v, want ErrPermission", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if obs.stale != 0 || obs.ops != 1 {
		t.Errorf("observer = %+v, want one operation and no stale errors", obs)
	}
}

func TestStatWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "out.mp4")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	info, err := StatWithRetry(testFile, fastRetry())
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v", err)
	}
	if info.Size() != 4 {
		t.Errorf("Size() = %d, want 4", info.Size())
	}

	start := time.Now()
	_, err = StatWithRetry(filepath.Join(tmpDir, "missing.mp4"), DefaultRetryConfig())
	if !os.IsNotExist(err) {
		t.Errorf("StatWithRetry() error = %v, want not-exist", err)
	}
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("StatWithRetry took %v, should not back off on ENOENT", elapsed)
	}
}

func TestReadDirWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.mkv"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := ReadDirWithRetry(tmpDir, fastRetry())
	if err != nil {
		t.Fatalf("ReadDirWithRetry() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name() != "a.mkv" {
		t.Errorf("entries[0] = %q, want sorted order", entries[0].Name())
	}

	if _, err := ReadDirWithRetry(filepath.Join(tmpDir, "nope"), fastRetry()); !os.IsNotExist(err) {
		t.Errorf("ReadDirWithRetry() error = %v, want not-exist", err)
	}
}

func BenchmarkVolumeResolver_Resolve(b *testing.B) {
	vr := NewVolumeResolver(map[string]string{
		"workspace": "/workspace",
		"scratch":   "/tmp/ffmpeg-cuda-api",
		"database":  "/database",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vr.Resolve("/workspace/clips/2024/a.mp4")
	}
}
