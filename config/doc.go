// Package config loads the access-layer configuration from the process
// environment, with an optional .env file for local development.
//
// Each external service gets its own section with base-URL defaults, so a
// zero-credential load still produces a usable config for the services that
// need none (the quote API). Validate reports which services are usable
// rather than failing the whole load.
package config
