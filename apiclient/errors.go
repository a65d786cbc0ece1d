package apiclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for request failures.
var (
	// ErrRateLimited is returned when the rate-limit retry budget is
	// exhausted and the service is still answering 429.
	ErrRateLimited = errors.New("apiclient: rate limited")

	// ErrNetwork is returned for transport-level failures that persisted
	// through the single forced-refresh retry.
	ErrNetwork = errors.New("apiclient: network failure")
)

// APIError is a non-2xx response from the external service.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-supplied error message, or a generic fallback
	// naming the status.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: api error (status %d): %s", e.Status, e.Message)
}
