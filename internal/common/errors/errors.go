// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Analysis pipeline error taxonomy.
const (
	ErrCodeInputRejected         ErrorCode = "INPUT_REJECTED"
	ErrCodeTransportFailure      ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeEmptyUpstreamResponse ErrorCode = "EMPTY_UPSTREAM_RESPONSE"
	ErrCodeNonStructuredResponse ErrorCode = "NON_STRUCTURED_RESPONSE"
	ErrCodeTruncatedResponse     ErrorCode = "TRUNCATED_RESPONSE"
	ErrCodeSemanticRejection     ErrorCode = "SEMANTIC_REJECTION"
	ErrCodeDecodeFailure         ErrorCode = "DECODE_FAILURE"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError carries a code, a human-readable message and optional details.
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

// CodeOf extracts the ErrorCode from err, or empty string if err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func NewInputRejectedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputRejected,
		Message:   "No usable text content provided for analysis",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTransportFailureError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Failed to get response from AI service after retries",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptyUpstreamResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyUpstreamResponse,
		Message:   "AI service returned empty response",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNonStructuredResponseError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNonStructuredResponse,
		Message:   "AI service failed to return structured data. Received plain text response instead of JSON.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTruncatedResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTruncatedResponse,
		Message:   "Received incomplete response from AI service. Please try again.",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSemanticRejectionError(summary string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSemanticRejection,
		Message:   summary,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDecodeFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailure,
		Message:   "Failed to parse AI response",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Analysis session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Failed to persist analysis session",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
