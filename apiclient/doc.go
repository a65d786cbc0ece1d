// Package apiclient issues requests against bearer-authenticated external
// APIs and recovers from the failures those services routinely produce.
//
// A Client classifies each response and applies one of three strategies:
//
//   - 429: sleep out the server's Retry-After (falling back to a doubling,
//     capped delay) and retry, a bounded number of times. When the budget is
//     exhausted the call fails wrapping ErrRateLimited.
//   - 401: force one credential refresh through the auth source and retry
//     the same request once. A second 401 propagates as *APIError.
//   - transport failure: retry once with a fresh credential, then fail
//     wrapping ErrNetwork.
//
// All other non-2xx statuses fail immediately with *APIError carrying the
// server-supplied message when one can be parsed. Retries are driven by an
// explicit attempt loop, never recursion, and every decision is logged to
// the configured sink and counted through observe.Instruments.
package apiclient
