package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/sysprobe"
	"ffmpeg-cuda-api/internal/transcoder"
	"ffmpeg-cuda-api/internal/workers"
	"ffmpeg-cuda-api/internal/workspace"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeEncoder struct {
	mu      sync.Mutex
	calls   []transcoder.Request
	timeout time.Duration

	encodeFn func(ctx context.Context, jobID string, req transcoder.Request) (*transcoder.Result, error)
}

func (f *fakeEncoder) Encode(ctx context.Context, jobID string, req transcoder.Request) (*transcoder.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.encodeFn != nil {
		return f.encodeFn(ctx, jobID, req)
	}
	return succeeded(jobID, req, 0), nil
}

func (f *fakeEncoder) Timeout() time.Duration {
	if f.timeout == 0 {
		return time.Hour
	}
	return f.timeout
}

func (f *fakeEncoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// succeeded builds the Result of a successful run writing size bytes.
func succeeded(jobID string, req transcoder.Request, size int64) *transcoder.Result {
	return &transcoder.Result{
		JobID:      jobID,
		Command:    []string{"ffmpeg", "-y", "-hwaccel", "cuda", "-i", "/workspace/" + req.Input, "/workspace/" + req.Output},
		InputFile:  "/workspace/" + req.Input,
		OutputFile: "/workspace/" + req.Output,
		Execution:  &transcoder.ExecutionResult{ExitCode: 0, Stdout: "", Stderr: "frame=100"},
		Outcome: transcoder.Outcome{
			Success:         true,
			OutputExists:    true,
			OutputSizeBytes: size,
		},
	}
}

type fakeJobStore struct {
	mu        sync.Mutex
	jobs      map[string]database.Job
	insertErr error
	getErr    error
	listErr   error
	lastLimit int
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]database.Job)}
}

func (s *fakeJobStore) InsertJob(_ context.Context, job *database.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeJobStore) GetJob(_ context.Context, id string) (*database.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, database.ErrJobNotFound
	}
	return &job, nil
}

func (s *fakeJobStore) ListJobs(_ context.Context, limit int) ([]database.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}

	jobs := make([]database.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *fakeJobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *fakeJobStore) get(id string) (database.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

type fakeProber struct {
	resolvable bool
	health     sysprobe.Health
	info       sysprobe.Info
}

func (p *fakeProber) FFmpegResolvable() bool                   { return p.resolvable }
func (p *fakeProber) Health(_ context.Context) sysprobe.Health { return p.health }
func (p *fakeProber) Info(_ context.Context) sysprobe.Info     { return p.info }

// =============================================================================
// Helpers
// =============================================================================

type testEnv struct {
	h       *Handlers
	encoder *fakeEncoder
	jobs    *fakeJobStore
	prober  *fakeProber
	stats   *stats.Recorder
	limiter *workers.Limiter
	root    string
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		encoder: &fakeEncoder{},
		jobs:    newFakeJobStore(),
		prober: &fakeProber{
			resolvable: true,
			health:     sysprobe.Health{FFmpegOK: true, GPUOK: true, GPUName: "NVIDIA L4"},
		},
		stats:   stats.New(),
		limiter: workers.NewLimiter(2),
		root:    t.TempDir(),
	}

	env.h = New(Dependencies{
		Encoder:   env.encoder,
		Workspace: workspace.New(env.root),
		Limiter:   env.limiter,
		Stats:     env.stats,
		Jobs:      env.jobs,
		Prober:    env.prober,
	})
	env.h.now = func() time.Time { return fixedNow }

	ids := 0
	var mu sync.Mutex
	env.h.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		ids++
		return fmt.Sprintf("job-%d", ids)
	}

	return env
}

func writeWorkspaceFile(t *testing.T, root, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// metricValue reads the current value of a single counter or gauge.
func metricValue(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	if c := out.GetCounter(); c != nil {
		return c.GetValue()
	}
	return out.GetGauge().GetValue()
}
