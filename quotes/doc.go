// Package quotes fetches random quotes from a quotable-compatible API.
//
// The provider is deliberately failure-proof: any network, decode, or
// payload problem falls back to a bundled static pool, so callers always
// receive quotes and never an error. The API needs no authentication, so
// requests go out directly rather than through the token-bearing client.
package quotes
