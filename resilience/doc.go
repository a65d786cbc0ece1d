// Package resilience provides the retry and rate-limiting building blocks
// used around external API calls.
//
// Retry runs an operation a bounded number of times with a configurable
// backoff strategy. The domain providers use it for their simple linear-delay
// policies; the API client implements its own 429-aware loop because its
// delays come from the server's Retry-After header.
//
// RateLimiter is a client-side token bucket guarding calls against a
// service's published quota, so the 429 path stays the exception rather than
// the steady state.
package resilience
