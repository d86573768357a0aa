package adsmeta

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrUnknownHelper is returned when a helper name is not recognized.
	ErrUnknownHelper = errors.New("unknown helper")

	// ErrUnknownAlgorithm is returned when a digest algorithm name is not recognized.
	ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

	// ErrNotEditable is returned when a value is written to a read-only field.
	ErrNotEditable = errors.New("field is not editable")
)

// ProcessStartError reports that a helper executable could not be launched.
type ProcessStartError struct {
	Executable string
	Target     string
	Err        error
}

func (e *ProcessStartError) Error() string {
	return fmt.Sprintf("failed to start %s %q: %v", e.Executable, e.Target, e.Err)
}

func (e *ProcessStartError) Unwrap() error {
	return e.Err
}

// ReadError reports an I/O failure while draining helper output.
type ReadError struct {
	Executable string
	Line       int // number of lines read before the failure
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read output of %s after line %d: %v", e.Executable, e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SizeParseError reports a member line whose size column is not a
// non-negative base-10 integer.
type SizeParseError struct {
	File   string
	Stream string
	Text   string
	Err    error
}

func (e *SizeParseError) Error() string {
	return fmt.Sprintf("invalid size %q for stream %q of %s: %v", e.Text, e.Stream, e.File, e.Err)
}

func (e *SizeParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents one or more validation errors that occurred
// while defining fields or loading configuration.
type ValidationError struct {
	Errors []error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", ve.Errors[0])
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(ve.Errors)))
	for i, err := range ve.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

// newValidationError creates a ValidationError from a slice of errors.
// Returns nil if the slice is empty.
func newValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
