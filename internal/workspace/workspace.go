package workspace

import (
	"strings"

	"ffmpeg-cuda-api/internal/filesystem"
)

// ConcatScheme prefixes an input reference that names several files to join.
const ConcatScheme = "concat:"

// Workspace resolves references against a root directory.
type Workspace struct {
	root  string
	retry filesystem.RetryConfig
}

// New returns a Workspace rooted at root. Trailing slashes are dropped so that
// resolution always inserts exactly one separator.
func New(root string) *Workspace {
	return &Workspace{
		root:  strings.TrimRight(root, "/"),
		retry: filesystem.DefaultRetryConfig(),
	}
}

// Root returns the workspace directory as configured, or "/" for the
// filesystem root.
func (w *Workspace) Root() string {
	if w.root == "" {
		return "/"
	}
	return w.root
}

// Resolve turns a plain reference into an absolute path. Absolute paths are
// returned unchanged; anything else is joined onto the root with a single "/".
// The result is not cleaned, so ".." segments are passed through as given.
func (w *Workspace) Resolve(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	return w.root + "/" + ref
}

// IsConcat reports whether ref uses the concat pseudo-scheme with at least one
// byte after the prefix. A bare "concat:" is treated as a plain file name.
func IsConcat(ref string) bool {
	return len(ref) > len(ConcatScheme) && strings.HasPrefix(ref, ConcatScheme)
}

// ResolveConcat splits a concat reference on "|" and resolves every entry in
// order. It returns nil when ref is not a concat reference.
func (w *Workspace) ResolveConcat(ref string) []string {
	if !IsConcat(ref) {
		return nil
	}

	entries := strings.Split(strings.TrimPrefix(ref, ConcatScheme), "|")
	resolved := make([]string, len(entries))
	for i, e := range entries {
		resolved[i] = w.Resolve(e)
	}
	return resolved
}
