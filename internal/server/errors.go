package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-matcher/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadJSON indicates a body that could not be decoded
type ErrBadJSON struct {
	Cause error
}

func (e *ErrBadJSON) Error() string {
	return fmt.Sprintf("invalid JSON body: %v", e.Cause)
}

func (e *ErrBadJSON) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch err.(type) {
	case *ErrValidation, *ErrBadJSON:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// MatchErrorStatus maps a failed analysis onto an HTTP status. The body still
// carries the MatchError with its fallback score.
func MatchErrorStatus(t types.ErrorType) int {
	switch t {
	case types.ErrorTypeValidation:
		return http.StatusBadRequest
	case types.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case types.ErrorTypeModel:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
