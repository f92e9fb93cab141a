package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"ffmpeg-cuda-api/internal/logging"
)

// Executor defaults.
const (
	DefaultTimeout    = time.Hour
	DefaultMaxCapture = 4 << 20
	defaultWaitDelay  = 10 * time.Second
)

// ExecutionResult describes one finished encoder process.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool

	StdoutTruncated bool
	StderrTruncated bool
}

// Executor runs encoder processes with a wall-clock ceiling and keeps track
// of them so they can be killed on shutdown.
type Executor struct {
	timeout    time.Duration
	maxCapture int
	waitDelay  time.Duration

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewExecutor returns an Executor. A non-positive timeout or maxCapture
// selects the default.
func NewExecutor(timeout time.Duration, maxCapture int) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxCapture <= 0 {
		maxCapture = DefaultMaxCapture
	}
	return &Executor{
		timeout:    timeout,
		maxCapture: maxCapture,
		waitDelay:  defaultWaitDelay,
		running:    make(map[string]context.CancelFunc),
	}
}

// Timeout returns the configured wall-clock ceiling.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Run starts argv, waits for it and returns its result. The process and
// every child it spawned are killed when the ceiling is reached, when ctx is
// done or when Cleanup is called.
//
// A non-nil error means no meaningful result: the process could not be
// started (ErrEncoderMissing for a missing binary) or was cancelled
// (ErrCancelled). Timeouts are reported through ExecutionResult.TimedOut.
func (e *Executor) Run(ctx context.Context, id string, argv []string) (*ExecutionResult, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.WaitDelay = e.waitDelay
	configureProcessGroup(cmd)

	// Set only when the kill reached a live process.
	var killed atomic.Bool
	kill := cmd.Cancel
	cmd.Cancel = func() error {
		err := kill()
		if err == nil {
			killed.Store(true)
		}
		return err
	}

	stdout := newTailBuffer(e.maxCapture)
	stderr := newTailBuffer(e.maxCapture)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEncoderMissing, argv[0])
		}
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	e.track(id, cancel)
	defer e.untrack(id)

	waitErr := cmd.Wait()

	result := &ExecutionResult{
		ExitCode:        exitCode(cmd, waitErr),
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		Duration:        time.Since(start),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
	}

	switch classifyRun(ctx.Err(), runCtx.Err(), killed.Load()) {
	case runTimedOut:
		result.TimedOut = true
		logging.Warn("Encoder for job %s exceeded %v and was killed", id, e.timeout)
	case runCancelled:
		return result, fmt.Errorf("%w after %v", ErrCancelled, result.Duration.Round(time.Millisecond))
	default:
		if waitErr != nil && !isExitError(waitErr) && !errors.Is(waitErr, runCtx.Err()) {
			logging.Warn("Encoder for job %s: %v", id, waitErr)
		}
	}

	return result, nil
}

type runOutcome int

const (
	runExited runOutcome = iota
	runTimedOut
	runCancelled
)

// classifyRun decides how a finished process ended. Only a process that was
// actually killed counts as timed out or cancelled; parentErr and runErr are
// the caller's and the run context's errors after Wait returned.
func classifyRun(parentErr, runErr error, killed bool) runOutcome {
	switch {
	case !killed:
		return runExited
	case errors.Is(runErr, context.DeadlineExceeded) && parentErr == nil:
		return runTimedOut
	default:
		return runCancelled
	}
}

// Running returns the number of processes currently tracked.
func (e *Executor) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.running)
}

// Cleanup kills all running encoder processes.
func (e *Executor) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, cancel := range e.running {
		logging.Info("Killing encoder process for job %s", id)
		cancel()
	}
}

func (e *Executor) track(id string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running[id] = cancel
}

func (e *Executor) untrack(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, id)
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// exitCode returns the process exit status, or -1 when it was killed by a
// signal or never reported one.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	return -1
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
	total int64
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total += int64(len(p))

	if len(p) >= b.limit {
		b.buf = append(b.buf[:0], p[len(p)-b.limit:]...)
		return len(p), nil
	}

	b.buf = append(b.buf, p...)
	// compact lazily so the copy cost is amortised over many writes
	if len(b.buf) > 2*b.limit {
		n := copy(b.buf, b.buf[len(b.buf)-b.limit:])
		b.buf = b.buf[:n]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.buf) > b.limit {
		return string(b.buf[len(b.buf)-b.limit:])
	}
	return string(b.buf)
}

// Truncated reports whether more than limit bytes were written.
func (b *tailBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total > int64(b.limit)
}
