// Package logbuf provides an in-process diagnostic log buffer for the
// access layer.
//
// A Sink keeps a fixed-capacity, newest-first ring of structured entries and
// fans each new entry out to registered listeners. It is intended for debug
// surfaces (log viewers, API inspectors) rather than durable logging: once
// the ring is full the oldest entries are discarded.
//
// Logging is best-effort by contract. Log never returns an error and never
// panics; a misbehaving listener cannot affect the caller's control flow.
package logbuf
