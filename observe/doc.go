// Package observe wires OpenTelemetry tracing and metrics for the access
// layer.
//
// It is pure instrumentation: an Observer owns the configured providers, and
// Instruments bundles the meters and tracer the API client records against
// (request counts, retries, rate-limit waits, token refreshes). A nil
// *Instruments is valid and records nothing, so telemetry stays optional for
// library consumers.
//
// The in-process diagnostic log ring lives in package logbuf; this package
// only covers the exported telemetry.
package observe
