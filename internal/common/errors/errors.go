// Package errors provides the structured error type shared by the HTTP layer
// and the answering pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration      ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeUpstream           ErrorCode = "UPSTREAM_ERROR"
	ErrCodeBreedLookupFailed  ErrorCode = "BREED_LOOKUP_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error code to the status returned before a response
// body has been committed.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstream, ErrCodeBreedLookupFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewConfigurationError signals a missing or invalid server setting.
func NewConfigurationError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError is used when a dependency could not be
// initialized at startup.
func NewServiceUnavailableError(message string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   message,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitError carries the user-facing overload message.
func NewRateLimitError(message string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   message,
		Details:   fmt.Sprintf("attempts: %d", attempts),
		Retryable: true,
		Metadata:  map[string]interface{}{"attempts": attempts},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError tags a failure of an external service. The original
// error stays reachable through errors.Is and errors.As.
func NewUpstreamError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstream,
		Message:   fmt.Sprintf("Upstream service '%s' error", service),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewBreedLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBreedLookupFailed,
		Message:   "Error consultando TheDogAPI",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AsStandardError unwraps err to a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode reports whether a caller may retry the same request later.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeServiceUnavailable, ErrCodeRateLimited, ErrCodeUpstream, ErrCodeBreedLookupFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RATE_LIMITED"), strings.Contains(codeStr, "UNAVAILABLE"):
		return "CAPACITY"
	case strings.Contains(codeStr, "UPSTREAM"), strings.Contains(codeStr, "BREED"):
		return "UPSTREAM"
	default:
		return "OTHER"
	}
}
