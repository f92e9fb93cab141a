package database

import "time"

// Job statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Job is one finished /encode request.
type Job struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Command   string    `json:"command,omitempty"`
	Status    string    `json:"status"`
	ErrorType string    `json:"error_type,omitempty"`
	// ReturnCode is nil when the encoder never ran.
	ReturnCode      *int    `json:"returncode"`
	DurationSeconds float64 `json:"duration_seconds"`
	OutputSizeBytes int64   `json:"output_size_bytes"`
	Message         string  `json:"message,omitempty"`
}

// StatusCounts maps a job status to the number of records with it.
type StatusCounts map[string]int64

// Total returns the sum over all statuses.
func (c StatusCounts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}
