/*
Package workers sizes and enforces the encode concurrency limit.

Each encode holds an NVENC session for its whole run, and consumer GPUs cap
the number of concurrent sessions, so the service admits a fixed number of
encoders at once and queues the rest.

# Sizing

[Count] resolves the slot count from, in order, the ENCODE_WORKERS
environment variable, the configured value, and GOMAXPROCS (which Go sets
from the container CPU limit):

	n := workers.Count(cfg.EncodeWorkers, 32)

# Limiting

[Limiter] is a counting semaphore whose Acquire honours context
cancellation, so a client that disconnects while queued gives up its place:

	limiter := workers.NewLimiter(n)
	if err := limiter.Acquire(r.Context()); err != nil {
	    return err
	}
	defer limiter.Release()

Set OnWait to mirror the queue length into a gauge.
*/
package workers
