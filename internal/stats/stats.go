package stats

import (
	"math"
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalEncodings      int64     `json:"total_encodings"`
	SuccessfulEncodings int64     `json:"successful_encodings"`
	FailedEncodings     int64     `json:"failed_encodings"`
	StartTime           time.Time `json:"start_time"`
	UptimeSeconds       float64   `json:"uptime_seconds"`
	UptimeHours         float64   `json:"uptime_hours"`
	SuccessRate         float64   `json:"success_rate"`
}

// Recorder counts encode requests. The zero value is not usable; call New.
type Recorder struct {
	start      time.Time
	now        func() time.Time
	total      atomic.Int64
	successful atomic.Int64
	failed     atomic.Int64
}

// New returns a Recorder whose uptime starts now.
func New() *Recorder {
	return &Recorder{start: time.Now(), now: time.Now}
}

// Job tracks one in-flight request.
type Job struct {
	r        *Recorder
	finished atomic.Bool
}

// Start counts a new request and returns its Job.
func (r *Recorder) Start() *Job {
	r.total.Add(1)
	return &Job{r: r}
}

// Finish records the request's result. Only the first call has any effect,
// which lets handlers defer a failure and override it on success.
func (j *Job) Finish(success bool) {
	if !j.finished.CompareAndSwap(false, true) {
		return
	}
	if success {
		j.r.successful.Add(1)
	} else {
		j.r.failed.Add(1)
	}
}

// Finished reports whether Finish has been called.
func (j *Job) Finished() bool {
	return j.finished.Load()
}

// Snapshot returns the current counters with derived uptime and success rate.
// The success rate is a percentage with one decimal and 0 when nothing has
// been counted yet.
func (r *Recorder) Snapshot() Snapshot {
	total := r.total.Load()
	successful := r.successful.Load()
	uptime := r.now().Sub(r.start).Seconds()

	return Snapshot{
		TotalEncodings:      total,
		SuccessfulEncodings: successful,
		FailedEncodings:     r.failed.Load(),
		StartTime:           r.start,
		UptimeSeconds:       round(uptime, 1),
		UptimeHours:         round(uptime/3600, 2),
		SuccessRate:         round(float64(successful)/float64(max(total, 1))*100, 1),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
