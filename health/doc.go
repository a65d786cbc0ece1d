// Package health probes the reachability of the external services behind
// the access layer and exposes the results over HTTP for debug surfaces.
//
// A probe only answers "can we reach the service", not "is the service
// correct": an authenticated 4xx still proves the endpoint is up.
package health
