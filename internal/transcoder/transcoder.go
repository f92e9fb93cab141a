package transcoder

import (
	"context"
	"fmt"
	"os"
	"time"

	"ffmpeg-cuda-api/internal/filesystem"
	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/metrics"
	"ffmpeg-cuda-api/internal/workspace"
)

// Config holds the pipeline settings.
type Config struct {
	// Binary is the encoder executable, looked up on PATH when not absolute.
	Binary string
	// ScratchDir holds concat manifests.
	ScratchDir string
	Timeout    time.Duration
	// MaxCapture bounds each captured output stream in bytes.
	MaxCapture int
}

// Transcoder turns encode requests into supervised encoder runs.
type Transcoder struct {
	cfg      Config
	ws       *workspace.Workspace
	executor *Executor
	stat     StatFunc
}

// Result describes an encode attempt. Fields are filled in as far as the
// pipeline got before stopping.
type Result struct {
	JobID      string
	Command    []string
	InputFile  string
	OutputFile string
	Concat     bool
	Execution  *ExecutionResult
	Outcome    Outcome
}

// New creates a Transcoder that resolves paths against ws.
func New(ws *workspace.Workspace, cfg Config) *Transcoder {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}

	retry := filesystem.DefaultRetryConfig()
	return &Transcoder{
		cfg:      cfg,
		ws:       ws,
		executor: NewExecutor(cfg.Timeout, cfg.MaxCapture),
		stat: func(path string) (os.FileInfo, error) {
			return filesystem.StatWithRetry(path, retry)
		},
	}
}

// Binary returns the configured encoder executable.
func (t *Transcoder) Binary() string { return t.cfg.Binary }

// Timeout returns the per-job wall-clock ceiling.
func (t *Transcoder) Timeout() time.Duration { return t.executor.Timeout() }

// Running returns the number of encoder processes currently alive.
func (t *Transcoder) Running() int { return t.executor.Running() }

// Cleanup kills every running encoder process.
func (t *Transcoder) Cleanup() { t.executor.Cleanup() }

// Encode runs one request through validation, path resolution, manifest
// creation, command synthesis, execution and classification.
//
// The returned Result is never nil. A non-nil error is always a *Error whose
// Kind says which stage stopped the job; Result then holds whatever was
// known at that point (for an encode failure that includes the full
// command and diagnostics).
//
// The encoder keeps running if ctx is cancelled; only the configured
// timeout or Cleanup stop it.
func (t *Transcoder) Encode(ctx context.Context, jobID string, req Request) (*Result, error) {
	result := &Result{JobID: jobID}

	if err := req.Validate(); err != nil {
		return result, err
	}

	result.OutputFile = t.ws.Resolve(req.Output)

	var secondary string
	if req.Input2 != "" {
		secondary = t.ws.Resolve(req.Input2)
	}

	if workspace.IsConcat(req.Input) {
		result.Concat = true

		manifest, release, err := WriteManifest(t.cfg.ScratchDir, jobID, t.ws.ResolveConcat(req.Input))
		if err != nil {
			metrics.ConcatManifestsTotal.WithLabelValues("error").Inc()
			logging.Error("Job %s: %v", jobID, err)
			return result, newError(KindManifestWrite, "manifest", err)
		}
		defer release()

		metrics.ConcatManifestsTotal.WithLabelValues("success").Inc()
		result.InputFile = manifest
	} else {
		result.InputFile = t.ws.Resolve(req.Input)

		if _, err := t.stat(result.InputFile); err != nil {
			e := newError(KindInputNotFound, "resolve", fmt.Errorf("%w: %s", ErrInputNotFound, result.InputFile))
			e.AvailableFiles = t.ws.AvailableFiles()
			return result, e
		}
	}

	if req.AudioOnly && req.VideoOnly {
		logging.Warn("Job %s: audio_only and video_only are both set; the encoder will drop every stream", jobID)
	}
	if req.CustomFilter != "" {
		logging.Debug("Job %s: custom_filter %q is accepted but not applied", jobID, req.CustomFilter)
	}

	result.Command = BuildCommand(t.cfg.Binary, req, Inputs{
		Primary:   result.InputFile,
		Concat:    result.Concat,
		Secondary: secondary,
		Output:    result.OutputFile,
	})

	logging.Info("Starting encoding job %s: %s", jobID, FormatCommand(result.Command))

	metrics.EncodeJobsInProgress.Inc()
	run, err := t.executor.Run(context.WithoutCancel(ctx), jobID, result.Command)
	metrics.EncodeJobsInProgress.Dec()

	result.Execution = run
	if err != nil {
		logging.Error("Job %s: %v", jobID, err)
		return result, newError(KindUnexpected, "execute", err)
	}

	recordCapture(run)

	if run.TimedOut {
		metrics.EncodeJobDuration.WithLabelValues("error").Observe(run.Duration.Seconds())
		result.Outcome = Classify(run, result.OutputFile, t.stat)
		return result, newError(KindTimeout, "execute", fmt.Errorf("%w (%s limit)", ErrTimeout, t.executor.Timeout()))
	}

	result.Outcome = Classify(run, result.OutputFile, t.stat)

	if !result.Outcome.Success {
		metrics.EncodeJobDuration.WithLabelValues("error").Observe(run.Duration.Seconds())
		logging.Warn("Encoding job %s failed in %.2fs (exit %d, output present: %t)",
			jobID, run.Duration.Seconds(), run.ExitCode, result.Outcome.OutputExists)
		return result, newError(KindEncodeFailed, "classify", failureReason(result.Outcome))
	}

	metrics.EncodeJobDuration.WithLabelValues("success").Observe(run.Duration.Seconds())
	metrics.EncodeOutputBytes.Observe(float64(result.Outcome.OutputSizeBytes))
	logging.Info("Encoding job %s completed in %.2fs (%d bytes)", jobID, run.Duration.Seconds(), result.Outcome.OutputSizeBytes)

	return result, nil
}

func failureReason(o Outcome) error {
	switch {
	case o.ReturnCode != 0:
		return fmt.Errorf("%w: encoder exited with code %d", ErrEncodeFailed, o.ReturnCode)
	case !o.OutputExists:
		return fmt.Errorf("%w: output file was not created", ErrEncodeFailed)
	default:
		return ErrEncodeFailed
	}
}

func recordCapture(res *ExecutionResult) {
	if res.StdoutTruncated {
		metrics.EncodeCaptureTruncated.WithLabelValues("stdout").Inc()
	}
	if res.StderrTruncated {
		metrics.EncodeCaptureTruncated.WithLabelValues("stderr").Inc()
	}
}
