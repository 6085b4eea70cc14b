// Package errors provides coded application errors for the medminder core.
package errors

import "fmt"

// ErrorCode classifies an operation failure. The reconciler's propagation
// policy hangs off these codes: validation and local-store failures reach the
// caller, remote-store failures never do.
type ErrorCode string

const (
	// ErrValidation: bad or missing user input. No state was changed.
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	// ErrNotFound: the referenced entity does not exist locally.
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrLocalStore: I/O or constraint failure on the authoritative store.
	// Fatal for the operation.
	ErrLocalStore ErrorCode = "LOCAL_STORE_FAILURE"
	// ErrRemoteStore: any failure reaching the best-effort remote store.
	// Swallowed and logged; the operation still reports success.
	ErrRemoteStore ErrorCode = "REMOTE_STORE_FAILURE"
	// ErrScheduleAnomaly: unparseable time-of-day or non-positive
	// frequency. Degrades to an empty schedule.
	ErrScheduleAnomaly ErrorCode = "SCHEDULE_ANOMALY"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Is checks if an error carries a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
