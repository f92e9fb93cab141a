package workers

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
)

// EnvOverride is the environment variable that overrides the encode slot count.
const EnvOverride = "ENCODE_WORKERS"

// Count returns the number of encodes allowed to run at once.
//
// The ENCODE_WORKERS environment variable wins when it holds a positive
// integer, then configured, then GOMAXPROCS. The result is at least 1 and,
// when limit > 0, at most limit.
func Count(configured, limit int) int {
	workers := configured

	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			workers = count
		}
	}

	if workers <= 0 {
		// GOMAXPROCS follows the container CPU limit
		workers = runtime.GOMAXPROCS(0)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// Limiter bounds the number of concurrent holders of a slot.
type Limiter struct {
	slots   chan struct{}
	waiting atomic.Int64

	// OnWait is called with +1 when a caller starts waiting and -1 when it stops.
	OnWait func(delta float64)
}

// NewLimiter returns a Limiter with n slots (minimum 1).
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done. The caller must call
// Release exactly once after a nil return.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}

	l.waiting.Add(1)
	l.notify(1)
	defer func() {
		l.waiting.Add(-1)
		l.notify(-1)
	}()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	select {
	case <-l.slots:
	default:
		panic("workers: Release without matching Acquire")
	}
}

// Capacity returns the total number of slots.
func (l *Limiter) Capacity() int { return cap(l.slots) }

// InUse returns the number of slots currently held.
func (l *Limiter) InUse() int { return len(l.slots) }

// Waiting returns the number of callers blocked in Acquire.
func (l *Limiter) Waiting() int { return int(l.waiting.Load()) }

func (l *Limiter) notify(delta float64) {
	if l.OnWait != nil {
		l.OnWait(delta)
	}
}
