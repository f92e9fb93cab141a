package transcoder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.mp4")
	if err := os.WriteFile(present, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.mp4")

	tests := []struct {
		name        string
		res         ExecutionResult
		output      string
		wantSuccess bool
		wantExists  bool
		wantSize    int64
	}{
		{"exit zero with output", ExecutionResult{ExitCode: 0}, present, true, true, 10},
		{"exit zero without output", ExecutionResult{ExitCode: 0, Stderr: "nothing written"}, missing, false, false, 0},
		{"non-zero exit with stale output", ExecutionResult{ExitCode: 1, Stderr: "error"}, present, false, true, 10},
		{"non-zero exit without output", ExecutionResult{ExitCode: 187}, missing, false, false, 0},
		{"timed out with partial output", ExecutionResult{ExitCode: -1, TimedOut: true}, present, false, true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.res
			got := Classify(&res, tt.output, os.Stat)

			if got.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", got.Success, tt.wantSuccess)
			}
			if got.OutputExists != tt.wantExists {
				t.Errorf("OutputExists = %v, want %v", got.OutputExists, tt.wantExists)
			}
			if got.OutputSizeBytes != tt.wantSize {
				t.Errorf("OutputSizeBytes = %d, want %d", got.OutputSizeBytes, tt.wantSize)
			}
			if got.ReturnCode != tt.res.ExitCode {
				t.Errorf("ReturnCode = %d, want %d", got.ReturnCode, tt.res.ExitCode)
			}

			if tt.wantSuccess && got.Diagnostics != nil {
				t.Error("Diagnostics set on success")
			}
			if !tt.wantSuccess {
				if got.Diagnostics == nil {
					t.Fatal("Diagnostics missing on failure")
				}
				if got.Diagnostics.Stderr != tt.res.Stderr {
					t.Errorf("Diagnostics.Stderr = %q, want %q", got.Diagnostics.Stderr, tt.res.Stderr)
				}
			}
		})
	}
}

func TestClassifyCarriesTruncation(t *testing.T) {
	res := &ExecutionResult{ExitCode: 1, Stdout: "o", Stderr: "e", StdoutTruncated: true}

	got := Classify(res, filepath.Join(t.TempDir(), "none"), os.Stat)

	if got.Diagnostics == nil || !got.Diagnostics.StdoutTruncated || got.Diagnostics.StderrTruncated {
		t.Errorf("Diagnostics = %+v, want stdout truncated only", got.Diagnostics)
	}
	if got.Diagnostics.Stdout != "o" {
		t.Errorf("Diagnostics.Stdout = %q", got.Diagnostics.Stdout)
	}
}
