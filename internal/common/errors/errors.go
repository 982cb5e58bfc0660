// Package errors provides standardized error handling for the evaluation API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation errors: rejected before the pipeline starts,
	// nothing is persisted.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeVisaTypeNotFound ErrorCode = "VISA_TYPE_NOT_FOUND"

	// Oracle failures: caught at the evaluator boundary, trigger the
	// deterministic fallback, never surfaced to the caller.
	ErrCodeOracleTimeout         ErrorCode = "ORACLE_TIMEOUT"
	ErrCodeOracleUnavailable     ErrorCode = "ORACLE_UNAVAILABLE"
	ErrCodeOracleInvalidResponse ErrorCode = "ORACLE_INVALID_RESPONSE"

	// Persistence failures: surfaced to the caller as retryable.
	ErrCodeRecordInsertFailed ErrorCode = "RECORD_INSERT_FAILED"
	ErrCodeDuplicateRecord    ErrorCode = "DUPLICATE_RECORD"
	ErrCodeRecordNotFound     ErrorCode = "RECORD_NOT_FOUND"

	// Reference data problems detected at catalog load time.
	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	// Read-only collaborators downstream of the persisted record.
	ErrCodeReportRenderFailed     ErrorCode = "REPORT_RENDER_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

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

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submitted fields are missing or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVisaTypeNotFoundError creates a non-retryable unknown-visa-type error.
func NewVisaTypeNotFoundError(country, code string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVisaTypeNotFound,
		Message:   "Unknown visa type",
		Details:   fmt.Sprintf("no visa type %q for country %q", code, country),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordInsertError creates a retryable persistence error.
func NewRecordInsertError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordInsertFailed,
		Message:   "Failed to persist evaluation record",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateRecordError creates a non-retryable duplicate-id error.
func NewDuplicateRecordError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateRecord,
		Message:   "Evaluation already exists",
		Details:   fmt.Sprintf("evaluation %q already exists", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable missing-record error.
func NewRecordNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Evaluation not found",
		Details:   fmt.Sprintf("no evaluation with id %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification helpers
// ==========================

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to the response status the API layer uses.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeVisaTypeNotFound, ErrCodeRecordNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateRecord:
		return http.StatusConflict
	case ErrCodeRecordInsertFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller may retry the same request.
func IsRetryable(err error) bool {
	return Normalize(err).Retryable
}
