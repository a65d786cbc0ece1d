// Package auth manages bearer credentials for external services that use
// the OAuth2 client-credentials grant.
//
// A ClientCredentials source caches one credential per service and refreshes
// it transparently when missing or expired. Expiry is recorded with a safety
// margin so an in-flight request cannot race the real expiry instant.
// Concurrent callers hitting an expired cache share a single in-flight
// exchange.
//
// The source holds no global state: construct one per external service and
// hand it to the API client that needs it.
package auth
