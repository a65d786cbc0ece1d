// Package cache provides a small in-memory TTL cache for immutable
// external-API responses, such as the per-track audio features that never
// change once fetched.
package cache
