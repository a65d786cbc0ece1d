package auth

import "errors"

// Sentinel errors for credential management.
var (
	// ErrMissingCredentials indicates the client ID or secret is not configured.
	ErrMissingCredentials = errors.New("auth: missing client credentials")

	// ErrAuthentication indicates the credential exchange was rejected.
	ErrAuthentication = errors.New("auth: authentication failed")
)
