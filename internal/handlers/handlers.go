package handlers

import (
	"context"
	"time"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/sysprobe"
	"ffmpeg-cuda-api/internal/transcoder"
	"ffmpeg-cuda-api/internal/workers"
	"ffmpeg-cuda-api/internal/workspace"

	"github.com/google/uuid"
)

// Encoder runs one encode request; *transcoder.Transcoder in production.
type Encoder interface {
	Encode(ctx context.Context, jobID string, req transcoder.Request) (*transcoder.Result, error)
	Timeout() time.Duration
}

// JobStore persists finished jobs; *database.Database in production.
type JobStore interface {
	InsertJob(ctx context.Context, job *database.Job) error
	GetJob(ctx context.Context, id string) (*database.Job, error)
	ListJobs(ctx context.Context, limit int) ([]database.Job, error)
}

// SystemProber reports encoder and GPU availability; *sysprobe.Prober in production.
type SystemProber interface {
	FFmpegResolvable() bool
	Health(ctx context.Context) sysprobe.Health
	Info(ctx context.Context) sysprobe.Info
}

// Dependencies are the collaborators a Handlers needs. Jobs may be nil when
// job history is disabled.
type Dependencies struct {
	Encoder   Encoder
	Workspace *workspace.Workspace
	Limiter   *workers.Limiter
	Stats     *stats.Recorder
	Jobs      JobStore
	Prober    SystemProber
}

// defaultEncodeSlots matches the two worker processes the service has
// always run with.
const defaultEncodeSlots = 2

type Handlers struct {
	encoder   Encoder
	workspace *workspace.Workspace
	limiter   *workers.Limiter
	stats     *stats.Recorder
	jobs      JobStore
	prober    SystemProber

	now   func() time.Time
	newID func() string
}

func New(deps Dependencies) *Handlers {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = workers.NewLimiter(workers.Count(defaultEncodeSlots, 0))
	}
	recorder := deps.Stats
	if recorder == nil {
		recorder = stats.New()
	}

	return &Handlers{
		encoder:   deps.Encoder,
		workspace: deps.Workspace,
		limiter:   limiter,
		stats:     recorder,
		jobs:      deps.Jobs,
		prober:    deps.Prober,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}
