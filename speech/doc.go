// Package speech synthesizes spoken audio from text through an
// ElevenLabs-compatible text-to-speech API.
package speech
