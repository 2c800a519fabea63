package authz

import "errors"

// ErrInsufficientScope is returned by Policy.Authorize when the
// principal lacks every scope a method requires.
var ErrInsufficientScope = errors.New("insufficient scope")
