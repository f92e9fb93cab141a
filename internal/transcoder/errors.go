package transcoder

import (
	"errors"
	"fmt"
)

// Kind classifies why an encode request did not succeed.
type Kind string

const (
	// KindValidation means the request was rejected before touching the filesystem.
	KindValidation Kind = "validation"
	// KindInputNotFound means the resolved primary input does not exist.
	KindInputNotFound Kind = "input_not_found"
	// KindManifestWrite means the concat manifest could not be written.
	KindManifestWrite Kind = "manifest_write"
	// KindTimeout means the encoder was killed at the wall-clock ceiling.
	KindTimeout Kind = "timeout"
	// KindEncodeFailed means the encoder ran but the outcome was not a success.
	KindEncodeFailed Kind = "encode_failed"
	// KindUnexpected covers everything else, such as a missing encoder binary.
	KindUnexpected Kind = "unexpected"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNoBody         = errors.New("no JSON data provided")
	ErrMissingField   = errors.New("missing required field")
	ErrInputNotFound  = errors.New("input file not found")
	ErrManifestWrite  = errors.New("failed to write concat manifest")
	ErrTimeout        = errors.New("encoding timeout")
	ErrEncodeFailed   = errors.New("encoding failed")
	ErrCancelled      = errors.New("encoding cancelled")
	ErrEmptyCommand   = errors.New("empty command")
	ErrEncoderMissing = errors.New("encoder binary not found")
)

// Error carries the failure kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Op   string // pipeline stage, e.g. "validate", "execute"
	Err  error

	// AvailableFiles is set for KindInputNotFound.
	AvailableFiles []string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnexpected when err is not
// an *Error. A nil error has no kind and returns "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Message returns the client-facing text for err, without the pipeline stage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
