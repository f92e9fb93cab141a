package workspace

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ffmpeg-cuda-api/internal/filesystem"
	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/mediatypes"
)

// ErrNotFound is returned by List when the workspace directory does not exist.
var ErrNotFound = errors.New("workspace not found")

// File describes one media file in the workspace.
type File struct {
	Name      string              `json:"name"`
	Type      mediatypes.FileType `json:"type"`
	SizeMB    float64             `json:"size_mb"`
	SizeBytes int64               `json:"size_bytes"`
	Modified  time.Time           `json:"modified"`
}

// Listing is the result of List.
type Listing struct {
	Files       []File  `json:"files"`
	Total       int     `json:"total"`
	Workspace   string  `json:"workspace"`
	TotalSizeMB float64 `json:"total_size_mb"`
	TotalBytes  int64   `json:"total_size_bytes"`
}

// List returns the media files directly inside the workspace root, sorted by
// name. Entries that disappear or cannot be stat'ed mid-listing are skipped.
func (w *Workspace) List() (*Listing, error) {
	root := w.Root()

	entries, err := filesystem.ReadDirWithRetry(root, w.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("failed to read workspace %s: %w", root, err)
	}

	listing := &Listing{
		Files:     make([]File, 0, len(entries)),
		Workspace: root,
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileType := mediatypes.GetFileType(strings.ToLower(filepath.Ext(entry.Name())))
		if fileType == mediatypes.FileTypeOther {
			continue
		}

		info, err := filesystem.StatWithRetry(filepath.Join(root, entry.Name()), w.retry)
		if err != nil {
			logging.Debug("Skipping %s in workspace listing: %v", entry.Name(), err)
			continue
		}

		sizeMB := roundTo(float64(info.Size())/1024/1024, 1)
		listing.Files = append(listing.Files, File{
			Name:      entry.Name(),
			Type:      fileType,
			SizeMB:    sizeMB,
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		})
		listing.TotalSizeMB += sizeMB
		listing.TotalBytes += info.Size()
	}

	sort.Slice(listing.Files, func(i, j int) bool {
		return listing.Files[i].Name < listing.Files[j].Name
	})

	listing.Total = len(listing.Files)
	listing.TotalSizeMB = roundTo(listing.TotalSizeMB, 1)

	return listing, nil
}

// AvailableFiles returns the names of media files in the workspace, or an
// empty slice if the directory cannot be read. It backs the "did you mean"
// list attached to input-not-found errors.
func (w *Workspace) AvailableFiles() []string {
	listing, err := w.List()
	if err != nil {
		logging.Debug("Could not list workspace for available files: %v", err)
		return []string{}
	}

	names := make([]string, len(listing.Files))
	for i, f := range listing.Files {
		names[i] = f.Name
	}
	return names
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
