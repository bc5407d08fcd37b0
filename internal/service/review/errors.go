package review

import (
	"errors"
	"fmt"
)

// Service errors. Engine errors from the domain packages are returned as they
// are, so callers match both kinds with errors.Is.
var (
	// ErrSessionNotFound indicates that the review session does not exist.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrCardNotFound indicates that the card state does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrNotOwned indicates that the session or card belongs to another user.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrSessionInProgress indicates that the user already has an active or
	// paused session.
	ErrSessionInProgress = errors.New("a review session is already in progress")

	// ErrCardExists indicates that the word is already in the user's study set.
	ErrCardExists = errors.New("word is already being studied")
)

// ServiceError wraps unexpected failures of the review service with the
// operation that failed. Use errors.As to inspect it.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
