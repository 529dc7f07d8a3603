package domain

import (
	"errors"
	"fmt"
)

// ErrContentTooShort marks extraction output below the configured minimum.
var ErrContentTooShort = errors.New("extracted content below minimum length")

// ErrEmptySummary marks a summarization call that returned no usable text.
var ErrEmptySummary = errors.New("summarization returned empty text")

// PipelineError tags a per-item failure with its taxonomy kind so the
// orchestrator can record it without inspecting adapter internals.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Classify wraps err with its taxonomy kind.
func Classify(kind ErrorKind, err error) error {
	return &PipelineError{Kind: kind, Err: err}
}

// KindOf extracts the taxonomy kind from err, falling back when untagged.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return fallback
}
