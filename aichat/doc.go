// Package aichat generates quote transformations through an
// OpenAI-compatible chat-completions API (x.ai).
//
// Generate reports failures in-band rather than as Go errors: UI-facing
// callers always receive a Response they can render, with Err set when the
// transformation could not be produced.
package aichat
