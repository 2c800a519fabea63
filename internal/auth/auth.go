// Package auth provides pluggable authentication for MCP transports: a
// Strategy inspects transport-level metadata (HTTP headers, in this
// implementation) and produces a Principal, independent of which
// transport carried the request and independent of what the caller is
// later allowed to do (that's internal/authz).
package auth

import (
	"context"
	"net/textproto"
	"time"
)

// Metadata carries transport-level request metadata a Strategy inspects
// to authenticate a caller. For HTTP this is the request's headers; for
// STDIO transports there is no per-message metadata and an empty
// Metadata is used, which only NoAuthStrategy accepts.
type Metadata struct {
	Headers map[string][]string
}

// Header returns the first value of the named header, canonicalizing
// the name the way net/http does, or "" if absent.
func (m Metadata) Header(name string) string {
	if m.Headers == nil {
		return ""
	}
	vs := m.Headers[textproto.CanonicalMIMEHeaderKey(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Principal is an authenticated caller. Scopes is a set for O(1)
// membership checks; authz derives required scopes from the JSON-RPC
// method and checks them against this set.
type Principal struct {
	Subject   string
	Scopes    map[string]struct{}
	Claims    map[string]any
	ExpiresAt *time.Time
}

// ScopeWildcard is a Principal scope that satisfies any scope check.
// NoAuthStrategy grants it so that authorization is effectively
// disabled when authentication itself is disabled.
const ScopeWildcard = "*"

// HasScope reports whether p carries the given scope, or the wildcard.
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Scopes[ScopeWildcard]; ok {
		return true
	}
	_, ok := p.Scopes[scope]
	return ok
}

// NewPrincipal builds a Principal from a subject and a slice of scopes.
func NewPrincipal(subject string, scopes []string) *Principal {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return &Principal{Subject: subject, Scopes: set}
}

// Strategy authenticates a caller from transport metadata. A nil
// Principal with a nil error is never valid; implementations return
// ErrUnauthenticated when no usable credential is presented and
// ErrInvalidCredential when one is presented but fails verification.
type Strategy interface {
	Authenticate(ctx context.Context, md Metadata) (*Principal, error)
}

type principalContextKey struct{}

// ContextWithPrincipal returns a context carrying p for downstream
// handlers (notably internal/authz and provider implementations that
// want the caller's identity).
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the Principal stored by
// ContextWithPrincipal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok
}
