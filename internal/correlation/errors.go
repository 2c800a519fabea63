package correlation

import "errors"

// Sentinel errors identifying why a pending request did not resolve
// with a paired response.
var (
	// ErrTimeout indicates the correlation timeout fired before a
	// response arrived.
	ErrTimeout = errors.New("correlation timeout")

	// ErrCancelled indicates the caller's context was cancelled.
	ErrCancelled = errors.New("correlation cancelled")

	// ErrConnectionClosed indicates the connection closed while the
	// request was still pending.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrUnknownID indicates a response arrived whose id does not match
	// any pending slot; this is logged, not fatal.
	ErrUnknownID = errors.New("unknown response id")
)
