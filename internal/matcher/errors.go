package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/extraction"
	"github.com/jonathan/resume-matcher/internal/resilience"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Fallback scores reported with failures.
const (
	FallbackScore      = 10
	BatchFallbackScore = 5
)

// ValidationError is malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("processing panic: %v", e.Value)
}

var keywordTypes = []struct {
	errType  types.ErrorType
	keywords []string
}{
	{types.ErrorTypeValidation, []string{"validation", "invalid", "required", "missing", "malformed"}},
	{types.ErrorTypeTimeout, []string{"timeout", "timed out", "deadline", "cancel"}},
	{types.ErrorTypeModel, []string{"embedding", "model", "api", "gemini", "extract"}},
	{types.ErrorTypeProcessing, []string{"processing", "calculat", "comput", "nan", "panic"}},
}

// Classify maps an error onto the failure taxonomy. Typed errors are checked
// first; anything else is classified by keywords in its message.
func Classify(err error) types.ErrorType {
	if err == nil {
		return types.ErrorTypeUnknown
	}

	var (
		validationErr *ValidationError
		configErr     *scoring.ConfigError
		schemaErr     *schemas.ValidationError
		timeoutErr    *resilience.TimeoutError
		apiErr        *extraction.APICallError
		modelErr      *embedding.ModelError
		panicErr      *PanicError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &configErr), errors.As(err, &schemaErr):
		return types.ErrorTypeValidation
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return types.ErrorTypeTimeout
	case errors.As(err, &apiErr), errors.As(err, &modelErr):
		return types.ErrorTypeModel
	case errors.As(err, &panicErr):
		return types.ErrorTypeProcessing
	}

	msg := strings.ToLower(err.Error())
	for _, kt := range keywordTypes {
		for _, kw := range kt.keywords {
			if strings.Contains(msg, kw) {
				return kt.errType
			}
		}
	}
	return types.ErrorTypeUnknown
}

func newMatchError(err error, fallback int, at time.Time) *types.MatchError {
	errType := Classify(err)
	return &types.MatchError{
		Message:       userMessage(errType),
		ErrorType:     errType,
		Details:       err.Error(),
		Timestamp:     at,
		FallbackScore: fallback,
	}
}

func userMessage(t types.ErrorType) string {
	switch t {
	case types.ErrorTypeValidation:
		return "Invalid match request"
	case types.ErrorTypeTimeout:
		return "Match analysis timed out"
	case types.ErrorTypeModel:
		return "Embedding or extraction service failed"
	case types.ErrorTypeProcessing:
		return "Match analysis failed during processing"
	default:
		return "Match analysis failed"
	}
}
