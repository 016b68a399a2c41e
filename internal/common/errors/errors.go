// Package errors provides standardized error handling for the loan assistant.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Infrastructure errors, retryable.
	ErrCodeRegistryLookupFailed ErrorCode = "REGISTRY_LOOKUP_FAILED"
	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeAuditWriteFailed     ErrorCode = "AUDIT_WRITE_FAILED"

	// Collaborator errors, recovered locally and never surfaced to the user.
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeFraudScreenFailed ErrorCode = "FRAUD_SCREEN_FAILED"

	// Request validation.
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	// The only condition logged as a system error rather than a business
	// outcome: an unexpected fault inside turn processing.
	ErrCodeTurnFault ErrorCode = "TURN_FAULT"

	ErrCodeLetterNotReady ErrorCode = "LETTER_NOT_READY"
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

// NewRegistryLookupFailedError creates a retryable registry error. A missing
// record is NOT an error and must never be wrapped in one.
func NewRegistryLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryLookupFailed,
		Message:   "Customer registry lookup error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit trail error. Audit
// failures degrade to a warning and never block a turn.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit trail write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a recoverable text-generation error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Text generation error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a recoverable generation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Text generation timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFraudScreenFailedError creates a recoverable fraud-screen error. The
// caller treats the screen result as Unknown and continues.
func NewFraudScreenFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFraudScreenFailed,
		Message:   "Fraud screen unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable missing session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTurnFaultError wraps an unexpected fault caught at the turn boundary.
func NewTurnFaultError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTurnFault,
		Message:   "Unexpected fault while processing turn",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLetterNotReadyError creates a non-retryable letter availability error.
func NewLetterNotReadyError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLetterNotReady,
		Message:   "Sanction letter not available yet",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
