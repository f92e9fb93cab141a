package transcoder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()

	path, release, err := WriteManifest(dir, "job-1", []string{"/w/a.mp4", "/w/b.mp4"})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	defer release()

	if want := filepath.Join(dir, "concat-job-1.txt"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := "file '/w/a.mp4'\nfile '/w/b.mp4'\n"
	if string(data) != want {
		t.Errorf("manifest = %q, want %q", data, want)
	}
}

func TestWriteManifestEscapesQuotes(t *testing.T) {
	dir := t.TempDir()

	path, release, err := WriteManifest(dir, "job-q", []string{"/w/it's here.mp4"})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	defer release()

	data, _ := os.ReadFile(path)
	want := `file '/w/it'\''s here.mp4'` + "\n"
	if string(data) != want {
		t.Errorf("manifest = %q, want %q", data, want)
	}
}

func TestWriteManifestRelease(t *testing.T) {
	dir := t.TempDir()

	path, release, err := WriteManifest(dir, "job-r", []string{"/w/a.mp4"})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("manifest still exists after release: %v", err)
	}

	// second call is a no-op
	release()
}

func TestWriteManifestIsExclusive(t *testing.T) {
	dir := t.TempDir()

	_, release, err := WriteManifest(dir, "dup", []string{"/w/a.mp4"})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	defer release()

	_, _, err = WriteManifest(dir, "dup", []string{"/w/b.mp4"})
	if !errors.Is(err, ErrManifestWrite) {
		t.Errorf("second WriteManifest() error = %v, want ErrManifestWrite", err)
	}
	if !errors.Is(err, os.ErrExist) {
		t.Errorf("second WriteManifest() error = %v, want os.ErrExist", err)
	}
}

func TestWriteManifestCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")

	path, release, err := WriteManifest(dir, "job-d", []string{"/w/a.mp4"})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	defer release()

	if filepath.Dir(path) != dir {
		t.Errorf("manifest written to %q, want directory %q", path, dir)
	}
}

func TestWriteManifestFailures(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		dir     string
		entries []string
	}{
		{"no entries", t.TempDir(), nil},
		{"scratch is a file", blocker, []string{"/w/a.mp4"}},
		{"scratch below a file", filepath.Join(blocker, "sub"), []string{"/w/a.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, release, err := WriteManifest(tt.dir, "job", tt.entries)
			if !errors.Is(err, ErrManifestWrite) {
				t.Errorf("WriteManifest() error = %v, want ErrManifestWrite", err)
			}
			if path != "" || release != nil {
				t.Errorf("WriteManifest() returned path %q and release on failure", path)
			}
		})
	}
}
