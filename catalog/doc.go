// Package catalog provides search and lookup against an OAuth-protected
// music catalog (Spotify-compatible). All requests flow through the
// resilient apiclient, so rate limiting and credential refresh are handled
// below this package.
//
// Tracks coming off the wire are untrusted: anything missing an id, name,
// artists, or album is dropped before it reaches a caller.
package catalog
