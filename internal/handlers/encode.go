package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/metrics"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/transcoder"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// errQueueAbandoned is returned when the client goes away while waiting
// for a free encode slot.
var errQueueAbandoned = errors.New("request cancelled while waiting for a free encode slot")

// EncodeResponse is the body of every /encode response. Fields that do not
// apply to the outcome are omitted.
type EncodeResponse struct {
	Status                string   `json:"status"`
	JobID                 string   `json:"job_id"`
	ReturnCode            *int     `json:"returncode,omitempty"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
	OutputFileCreated     bool     `json:"output_file_created"`
	OutputSizeMB          float64  `json:"output_size_mb"`
	Command               string   `json:"command,omitempty"`
	InputFile             string   `json:"input_file,omitempty"`
	OutputFile            string   `json:"output_file,omitempty"`
	Timestamp             string   `json:"timestamp"`
	ErrorType             string   `json:"error_type,omitempty"`
	Message               string   `json:"message,omitempty"`
	FFmpegStdout          *string  `json:"ffmpeg_stdout,omitempty"`
	FFmpegStderr          *string  `json:"ffmpeg_stderr,omitempty"`
	StdoutTruncated       bool     `json:"ffmpeg_stdout_truncated,omitempty"`
	StderrTruncated       bool     `json:"ffmpeg_stderr_truncated,omitempty"`
	AvailableFiles        []string `json:"available_files,omitempty"`
}

// statusForKind maps a failure kind to its HTTP status code.
func statusForKind(kind transcoder.Kind) int {
	switch kind {
	case "":
		return http.StatusOK
	case transcoder.KindValidation:
		return http.StatusBadRequest
	case transcoder.KindInputNotFound:
		return http.StatusNotFound
	case transcoder.KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Encode handles POST /encode. Every request is counted exactly once in the
// stats, whatever stage it stops at.
func (h *Handlers) Encode(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	jobID := h.newID()
	job := h.stats.Start()
	defer func() {
		// A panic below still has to settle the counters.
		if !job.Finished() {
			job.Finish(false)
		}
	}()

	req, err := transcoder.DecodeRequest(r.Body)
	if err != nil {
		logging.Warn("Rejected encode request %s: %v", jobID, err)
		h.finishEncode(w, r, start, job, req, &transcoder.Result{JobID: jobID}, err)
		return
	}

	result, err := h.runEncode(r.Context(), jobID, req)
	if result == nil {
		result = &transcoder.Result{JobID: jobID}
	}
	h.finishEncode(w, r, start, job, req, result, err)
}

// runEncode waits for a free encode slot and runs the job in it.
func (h *Handlers) runEncode(ctx context.Context, jobID string, req transcoder.Request) (*transcoder.Result, error) {
	if err := h.limiter.Acquire(ctx); err != nil {
		logging.Warn("Encode request %s abandoned while queued: %v", jobID, err)
		return nil, fmt.Errorf("%w: %w", errQueueAbandoned, err)
	}
	defer h.limiter.Release()

	return h.encoder.Encode(ctx, jobID, req)
}

// finishEncode writes the response, then records metrics, stats and history.
func (h *Handlers) finishEncode(w http.ResponseWriter, r *http.Request, start time.Time, job *stats.Job, req transcoder.Request, result *transcoder.Result, encodeErr error) {
	resp := h.buildEncodeResponse(start, result, encodeErr)
	kind := transcoder.KindOf(encodeErr)

	writeJSONResponse(w, statusForKind(kind), resp)

	metrics.EncodeJobsTotal.WithLabelValues(resp.Status).Inc()
	if kind != "" {
		metrics.EncodeErrorsTotal.WithLabelValues(string(kind)).Inc()
	}

	job.Finish(encodeErr == nil)

	if encodeErr == nil {
		logging.Info("Encode %s succeeded in %.2fs", resp.JobID, resp.ProcessingTimeSeconds)
	} else {
		logging.Info("Encode %s failed (%s) in %.2fs: %s", resp.JobID, kind, resp.ProcessingTimeSeconds, resp.Message)
	}

	h.recordJob(context.WithoutCancel(r.Context()), req, result, resp)
}

func (h *Handlers) buildEncodeResponse(start time.Time, result *transcoder.Result, encodeErr error) EncodeResponse {
	now := h.now()

	resp := EncodeResponse{
		Status:                statusSuccess,
		JobID:                 result.JobID,
		ProcessingTimeSeconds: round(now.Sub(start).Seconds(), 2),
		InputFile:             result.InputFile,
		OutputFile:            result.OutputFile,
		Timestamp:             now.UTC().Format(time.RFC3339Nano),
	}
	if len(result.Command) > 0 {
		resp.Command = transcoder.FormatCommand(result.Command)
	}

	if run := result.Execution; run != nil {
		code := run.ExitCode
		resp.ReturnCode = &code
	}

	outcome := result.Outcome
	resp.OutputFileCreated = outcome.OutputExists
	if outcome.OutputExists {
		resp.OutputSizeMB = bytesToMB(outcome.OutputSizeBytes)
	}

	if encodeErr == nil {
		return resp
	}

	resp.Status = statusError
	resp.ErrorType = string(transcoder.KindOf(encodeErr))
	resp.Message = transcoder.Message(encodeErr)

	if run := result.Execution; run != nil {
		stdout, stderr := run.Stdout, run.Stderr
		resp.FFmpegStdout = &stdout
		resp.FFmpegStderr = &stderr
		resp.StdoutTruncated = run.StdoutTruncated
		resp.StderrTruncated = run.StderrTruncated
	}

	var terr *transcoder.Error
	if errors.As(encodeErr, &terr) && terr.Kind == transcoder.KindInputNotFound {
		resp.AvailableFiles = terr.AvailableFiles
		if resp.AvailableFiles == nil {
			resp.AvailableFiles = []string{}
		}
	}

	return resp
}

// recordJob persists the finished job. History failures never affect the
// response, which has already been written.
func (h *Handlers) recordJob(ctx context.Context, req transcoder.Request, result *transcoder.Result, resp EncodeResponse) {
	if h.jobs == nil {
		return
	}

	record := &database.Job{
		ID:              resp.JobID,
		CreatedAt:       h.now().UTC(),
		Input:           req.Input,
		Output:          req.Output,
		Command:         resp.Command,
		Status:          database.StatusSuccess,
		ErrorType:       resp.ErrorType,
		ReturnCode:      resp.ReturnCode,
		DurationSeconds: resp.ProcessingTimeSeconds,
		OutputSizeBytes: result.Outcome.OutputSizeBytes,
		Message:         resp.Message,
	}
	if resp.Status != statusSuccess {
		record.Status = database.StatusError
	}

	if err := h.jobs.InsertJob(ctx, record); err != nil {
		logging.Warn("Failed to record job %s in history: %v", resp.JobID, err)
	}
}
