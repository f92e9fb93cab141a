package transcoder

import "os"

// StatFunc reports file metadata; filesystem.StatWithRetry in production.
type StatFunc func(path string) (os.FileInfo, error)

// Diagnostics carries captured encoder output for a failed run.
type Diagnostics struct {
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
}

// Outcome is the verdict for one encoder run.
type Outcome struct {
	Success         bool
	ReturnCode      int
	OutputExists    bool
	OutputSizeBytes int64
	// Diagnostics is nil on success.
	Diagnostics *Diagnostics
}

// Classify decides whether an encoder run succeeded. Success requires both a
// zero exit status and an output file present after the process returned:
// an encoder can exit 0 without writing anything, and a file left over from
// an earlier run does not make a failed run a success.
func Classify(res *ExecutionResult, outputPath string, stat StatFunc) Outcome {
	out := Outcome{ReturnCode: res.ExitCode}

	if info, err := stat(outputPath); err == nil {
		out.OutputExists = true
		out.OutputSizeBytes = info.Size()
	}

	out.Success = res.ExitCode == 0 && !res.TimedOut && out.OutputExists

	if !out.Success {
		out.Diagnostics = &Diagnostics{
			Stdout:          res.Stdout,
			Stderr:          res.Stderr,
			StdoutTruncated: res.StdoutTruncated,
			StderrTruncated: res.StderrTruncated,
		}
	}

	return out
}
