package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ffmpeg-cuda-api/internal/metrics"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ErrJobNotFound is returned by GetJob for an unknown id.
var ErrJobNotFound = errors.New("job not found")

const jobColumns = `id, created_at, input, output, command, status, error_type,
	return_code, duration_seconds, output_size_bytes, message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job        Job
		createdAt  int64
		returnCode sql.NullInt64
	)

	err := row.Scan(
		&job.ID, &createdAt, &job.Input, &job.Output, &job.Command, &job.Status,
		&job.ErrorType, &returnCode, &job.DurationSeconds, &job.OutputSizeBytes, &job.Message,
	)
	if err != nil {
		return nil, err
	}

	job.CreatedAt = time.UnixMilli(createdAt).UTC()
	if returnCode.Valid {
		rc := int(returnCode.Int64)
		job.ReturnCode = &rc
	}
	return &job, nil
}

// InsertJob stores a job record. A zero CreatedAt is set to now.
func (d *Database) InsertJob(ctx context.Context, job *Job) (err error) {
	start := time.Now()
	defer func() { recordQuery("insert_job", start, err) }()

	if job.ID == "" {
		return errors.New("job id is required")
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	var returnCode sql.NullInt64
	if job.ReturnCode != nil {
		returnCode = sql.NullInt64{Int64: int64(*job.ReturnCode), Valid: true}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.CreatedAt.UnixMilli(), job.Input, job.Output, job.Command, job.Status,
		job.ErrorType, returnCode, job.DurationSeconds, job.OutputSizeBytes, job.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob returns one job by id, or ErrJobNotFound.
func (d *Database) GetJob(ctx context.Context, id string) (job *Job, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrJobNotFound) {
			recordQuery("get_job", start, nil)
			return
		}
		recordQuery("get_job", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err = scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// ListJobs returns the most recent jobs, newest first. limit is clamped to
// [1, MaxListLimit]; zero or negative selects DefaultListLimit.
func (d *Database) ListJobs(ctx context.Context, limit int) (jobs []Job, err error) {
	start := time.Now()
	defer func() { recordQuery("list_jobs", start, err) }()

	limit = ClampLimit(limit)

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs = make([]Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

// ClampLimit applies the list defaults and bounds.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// CountByStatus returns the number of records per status.
func (d *Database) CountByStatus(ctx context.Context) (counts StatusCounts, err error) {
	start := time.Now()
	defer func() { recordQuery("count_by_status", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts = StatusCounts{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.DBJobRecords.Set(float64(counts.Total()))
	return counts, nil
}

// PruneJobs deletes records created before cutoff and returns how many were
// removed.
func (d *Database) PruneJobs(ctx context.Context, cutoff time.Time) (n int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_jobs", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `DELETE FROM jobs WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune jobs: %w", err)
	}
	return result.RowsAffected()
}
