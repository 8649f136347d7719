package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound               = errors.New("resource not found")
	ErrBadRequest             = errors.New("bad request")
	ErrInternal               = errors.New("internal server error")
	ErrValidation             = errors.New("validation error")
	ErrExtractionFailed       = errors.New("text extraction failed")
	ErrStructuringUnavailable = errors.New("structuring capability unavailable")
	ErrPersistenceFailed      = errors.New("persistence failed")
	ErrRenderFailed           = errors.New("document render failed")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// ExtractionFailed marks a decode error on a nominally supported file
// format. Surfaced at upload time; no case is created.
func ExtractionFailed(err error) *AppError {
	return &AppError{
		Err:        ErrExtractionFailed,
		Code:       "EXTRACTION_FAILED",
		Message:    fmt.Sprintf("text extraction failed: %v", err),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// StructuringUnavailable marks an AI client network, 5xx or timeout
// failure. Never surfaced to end users; the orchestrator falls back to the
// heuristic parser.
func StructuringUnavailable(err error) *AppError {
	return &AppError{
		Err:        ErrStructuringUnavailable,
		Code:       "STRUCTURING_UNAVAILABLE",
		Message:    fmt.Sprintf("structuring capability unavailable: %v", err),
		StatusCode: http.StatusBadGateway,
	}
}

// PersistenceFailed marks a store write error during a processing
// transition. The case moves to rejected; the write is not retried.
func PersistenceFailed(err error) *AppError {
	return &AppError{
		Err:        ErrPersistenceFailed,
		Code:       "PERSISTENCE_FAILED",
		Message:    fmt.Sprintf("persistence failed: %v", err),
		StatusCode: http.StatusInternalServerError,
	}
}

// RenderFailed marks a document render failure. No partial document is
// returned to the caller.
func RenderFailed(err error) *AppError {
	return &AppError{
		Err:        ErrRenderFailed,
		Code:       "RENDER_FAILED",
		Message:    "document generation failed",
		StatusCode: http.StatusInternalServerError,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
