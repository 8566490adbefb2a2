package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// ErrAnalysisInFlight indicates an annotation or transform request is
	// already running for the session. At most one is allowed at a time.
	ErrAnalysisInFlight = errors.New("an analysis request is already in flight for this session")
)

// ServiceError indicates the upstream text-completion service failed or
// returned a non-success status. The operation is aborted and the
// document left untouched; the status is reported to the user verbatim.
type ServiceError struct {
	Status  int    // upstream HTTP status (0 when the call never completed)
	Message string // upstream error detail, best effort
}

func (e *ServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("text service call failed: %s", e.Message)
	}
	return fmt.Sprintf("text service returned status %d: %s", e.Status, e.Message)
}

// StatusCode implements the HTTPError interface. Upstream failures are
// reported as a bad gateway regardless of the upstream status.
func (e *ServiceError) StatusCode() int { return http.StatusBadGateway }

// MalformedResponseError indicates the model output did not contain a
// parseable JSON array. Preview carries a bounded slice of the offending
// text for diagnosis.
type MalformedResponseError struct {
	Preview string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model response did not contain a parseable suggestion array (preview: %q)", e.Preview)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

func (e *MalformedResponseError) StatusCode() int { return http.StatusBadGateway }
