package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrMaxRetriesExceeded is returned when the attempt budget is exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when the client-side limit blocks a call.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)
