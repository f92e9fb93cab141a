package transcoder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ffmpeg-cuda-api/internal/logging"
)

// manifestLine renders one concat demuxer entry. Single quotes inside the
// path are closed, escaped and reopened, which is the demuxer's only quoting
// form.
func manifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'\n"
}

// ManifestPath returns the manifest location for a job.
func ManifestPath(dir, jobID string) string {
	return filepath.Join(dir, "concat-"+jobID+".txt")
}

// WriteManifest writes the concat list for jobID into dir and returns its path
// together with a release function that removes it. release is safe to call
// more than once and must be called on every path once err is nil.
//
// The file is created exclusively, so two jobs can never share a manifest.
func WriteManifest(dir, jobID string, entries []string) (path string, release func(), err error) {
	if len(entries) == 0 {
		return "", nil, fmt.Errorf("%w: no entries", ErrManifestWrite)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}

	path = ManifestPath(dir, jobID)

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(manifestLine(e))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}

	_, writeErr := f.WriteString(b.String())
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}

	released := false
	release = func() {
		if released {
			return
		}
		released = true
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Failed to remove concat manifest %s: %v", path, err)
		}
	}

	return path, release, nil
}
