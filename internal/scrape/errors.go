package scrape

import (
	"errors"
	"fmt"
)

// SetupError marks failures that make a stage impossible to start at all
// (missing input map, malformed persisted format, bad configuration). The
// CLI exits non-zero only for this class; everything else degrades to
// partial output.
type SetupError struct {
	Stage string
	Err   error
}

// NewSetupError wraps err as a fatal setup failure for the named stage.
func NewSetupError(stage string, err error) *SetupError {
	return &SetupError{Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// IsSetupError reports whether err is (or wraps) a SetupError.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// ErrFetchExhausted is returned by the retrying fetcher once every attempt
// for one page has failed. It is terminal for that page only.
var ErrFetchExhausted = errors.New("fetch attempts exhausted")
