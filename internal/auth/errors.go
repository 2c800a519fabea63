package auth

import "errors"

// Sentinel errors returned by Strategy implementations. Callers use
// errors.Is against these, never string matching.
var (
	// ErrUnauthenticated means no credential was presented at all (e.g.
	// missing Authorization header under a strategy that requires one).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredential means a credential was presented but failed
	// verification: bad API key, invalid/expired/wrong-audience token.
	ErrInvalidCredential = errors.New("invalid credential")
)
