package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the upstream error taxonomy. Handlers map these
// to HTTP statuses; none of them carries upstream detail beyond what
// the client is allowed to see.
var (
	// ErrUnauthorized means the Shodan API key is invalid or expired.
	ErrUnauthorized = errors.New("shodan API key invalid or expired; check SHODAN_API_KEY")
	// ErrForbidden means the key lacks permission for the request.
	ErrForbidden = errors.New("access denied; check your Shodan API key permissions")
	// ErrNotFound means the host does not exist upstream. A normal
	// negative result, not a system fault.
	ErrNotFound = errors.New("host not found in Shodan")
	// ErrTimeout means the upstream call exceeded its deadline.
	// Reported distinctly so callers can retry with backoff.
	ErrTimeout = errors.New("timeout contacting Shodan API")
)

// UpstreamError preserves a non-mapped upstream failure for diagnostics.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("shodan API error (%d): %s", e.Status, e.Message)
}

// ValidationError marks bad caller input. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ResolutionError marks a hostname that could not be resolved to an IP.
type ResolutionError struct {
	Hostname string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve hostname %q: %v", e.Hostname, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
