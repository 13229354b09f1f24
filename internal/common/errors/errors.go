// Package errors provides standardized error handling for the probe report pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request validation
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	// Configuration
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"

	// Lookup sources (PubChem, PubMed, Wikipedia)
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeSourceTimeout     ErrorCode = "SOURCE_TIMEOUT"
	ErrCodeSourceMalformed   ErrorCode = "SOURCE_MALFORMED"
	ErrCodeNoSourceData      ErrorCode = "NO_SOURCE_DATA"

	// Inference backend
	ErrCodeModelLoading      ErrorCode = "MODEL_LOADING"
	ErrCodeRateLimited       ErrorCode = "INFERENCE_RATE_LIMITED"
	ErrCodeInferenceTimeout  ErrorCode = "INFERENCE_TIMEOUT"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeInferenceFailed   ErrorCode = "INFERENCE_FAILED"

	// Cache backend
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	// Request lifecycle
	ErrCodeRequestCanceled ErrorCode = "REQUEST_CANCELED"

	// Fallback for errors raised outside the pipeline
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidQueryError creates a non-retryable query validation error.
func NewInvalidQueryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Query must be a non-empty probe or compound name",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCredentialError creates the fatal startup error for an absent inference token.
func NewMissingCredentialError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCredential,
		Message:   "Inference API credential is not configured",
		Details:   fmt.Sprintf("configKey: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigError creates a non-retryable configuration error.
func NewInvalidConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfig,
		Message:   "Configuration validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceUnavailableError creates a lookup failure error. The pipeline recovers
// by substituting an absent record, so this is never retried.
func NewSourceUnavailableError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceUnavailable,
		Message:   fmt.Sprintf("Lookup source '%s' request failed", source),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceTimeoutError creates a lookup timeout error (recovered as absence).
func NewSourceTimeoutError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceTimeout,
		Message:   fmt.Sprintf("Lookup source '%s' timed out", source),
		Details:   "call exceeded configured timeout",
		Retryable: false, // recovered by absence, not retried
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceMalformedError creates a lookup parse error (recovered as absence).
func NewSourceMalformedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceMalformed,
		Message:   fmt.Sprintf("Lookup source '%s' returned an unparseable response", source),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoSourceDataError creates the soft warning raised when all lookups are empty.
func NewNoSourceDataError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoSourceData,
		Message:   "No source returned data for query",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelLoadingError creates a retryable cold-start error.
func NewModelLoadingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelLoading,
		Message:   "Inference model is loading",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable rate-limit error.
func NewRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Inference backend rate limited the request",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceTimeoutError creates a retryable inference timeout error.
func NewInferenceTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceTimeout,
		Message:   "Inference call timed out",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError creates a retryable unrecognized-response error.
func NewMalformedResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Inference response did not match any known shape",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceFailedError creates the terminal inference error. Its message is
// surfaced verbatim to the caller as report content, never as a panic.
func NewInferenceFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceFailed,
		Message:   "Inference backend reported a non-recoverable error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestCanceledError wraps a caller-initiated cancellation or an
// exceeded request deadline. The client may retry with a fresh request.
func NewRequestCanceledError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestCanceled,
		Message:   "Request was canceled before the report completed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a cache backend error. Lookups degrade to
// direct upstream calls when the cache fails.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code. Transient
// inference codes allow 2 retries on top of the first attempt (3 attempts total).
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeModelLoading,
		ErrCodeRateLimited,
		ErrCodeInferenceTimeout,
		ErrCodeMalformedResponse:
		return 2

	default:
		return 0 // lookup, validation and terminal errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CREDENTIAL") || strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "QUERY"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SOURCE"):
		return "LOOKUP"
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "INFERENCE") || strings.Contains(codeStr, "RESPONSE"):
		return "INFERENCE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "CANCELED"):
		return "REQUEST"
	default:
		return "OTHER"
	}
}
