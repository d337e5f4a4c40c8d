package extraction

import (
	"errors"
	"fmt"
	"strings"
)

// APICallError is a failed model call.
type APICallError struct {
	Field   string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed for %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed for %s: %s", e.Field, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError is a model answer that is not the JSON we asked for.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError is well-formed JSON that violates the output schema.
type ValidationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// FieldFailure is one sub-extraction that failed.
type FieldFailure struct {
	Field string
	Err   error
}

// PartialError reports failed sub-extractions. The features returned alongside
// it are still usable; failed fields are empty or filled by a text fallback.
type PartialError struct {
	Side     string
	Failures []FieldFailure
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Field, f.Err))
	}
	return fmt.Sprintf("%s extraction incomplete (%s)", e.Side, strings.Join(parts, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Warnings renders one line per failed field.
func (e *PartialError) Warnings() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, fmt.Sprintf("%s %s extraction failed: %v", e.Side, f.Field, f.Err))
	}
	return out
}

// IsPartial reports whether err carries usable features.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}
