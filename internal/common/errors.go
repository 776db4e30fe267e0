// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtrella/outlay/internal/model"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Session errors.
	ErrSessionBusy = errors.New("session has a transition in flight")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports input that was rejected before any external call
// was made. Always recoverable; the session is left unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input rejected: %s", e.Reason)
}

// ClassificationError wraps a failure of the classification gateway:
// unreachable provider, timeout, or malformed payload. The session stays in
// AWAITING_INPUT so the same text can be re-submitted.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a storage failure while finalizing an expense. The
// session stays in AWAITING_CONFIRMATION so the confirmation can be retried
// without re-classifying.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError reports a protocol violation: an event arrived that
// the session's current state does not accept. The session is left unchanged.
type InvalidTransitionError struct {
	Event string
	State model.SessionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed in state %q", e.Event, e.State)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	// Check for specific retryable errors
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Gateway failures are transient from the caller's point of view.
	var classificationErr *ClassificationError
	if errors.As(err, &classificationErr) {
		return true
	}

	// Check for retryable error type
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
