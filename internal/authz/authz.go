// Package authz authorizes an already-authenticated MCP caller against
// the JSON-RPC method it is invoking. Authorization is keyed on the
// method name, never on a transport-level URL path: the MCP endpoint
// is a single route multiplexing many logical operations over one
// POST /mcp, so a path-based check can only ever say "may call the MCP
// endpoint at all", not "may call tools/call" versus "may call
// resources/read".
package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

// Policy decides whether a Principal may invoke a JSON-RPC method.
// A nil error means permit; any non-nil error means deny and is always
// safe to render as a JSON-RPC -32001 error (see DenyResponse).
type Policy interface {
	Authorize(ctx context.Context, principal *auth.Principal, method string) error
}

// scopePolicy derives the scope(s) required for a method from a table
// keyed by method prefix, then checks the principal's granted scopes.
// Methods with no table entry are permitted to any authenticated
// principal (e.g. "ping", "initialize") since they carry no
// capability of their own.
type scopePolicy struct {
	required map[string][]string
}

// NewScopePolicy builds a Policy from a map of method name (or
// "prefix/*" wildcard) to the scopes that satisfy it. A caller needs
// only one of the listed scopes, mirroring TokenClaims.HasAnyScope.
func NewScopePolicy(required map[string][]string) Policy {
	return &scopePolicy{required: required}
}

// DefaultMethodScopes returns the conventional method-to-scope mapping
// used when a deployment doesn't supply its own: each capability's
// operations require that capability's coarse scope, following the
// "mcp:<capability>" convention also used for RFC 9728 scopes_supported.
func DefaultMethodScopes() map[string][]string {
	return map[string][]string{
		"tools/list":               {"mcp:tools", auth.ScopeWildcard},
		"tools/call":               {"mcp:tools", auth.ScopeWildcard},
		"resources/list":           {"mcp:resources", auth.ScopeWildcard},
		"resources/templates/list": {"mcp:resources", auth.ScopeWildcard},
		"resources/read":           {"mcp:resources", auth.ScopeWildcard},
		"resources/subscribe":      {"mcp:resources", auth.ScopeWildcard},
		"resources/unsubscribe":    {"mcp:resources", auth.ScopeWildcard},
		"prompts/list":             {"mcp:prompts", auth.ScopeWildcard},
		"prompts/get":              {"mcp:prompts", auth.ScopeWildcard},
		"logging/setLevel":         {"mcp:logging", auth.ScopeWildcard},
	}
}

func (p *scopePolicy) Authorize(_ context.Context, principal *auth.Principal, method string) error {
	required, ok := p.required[method]
	for i := strings.LastIndex(method, "/"); !ok && i > 0; i = strings.LastIndex(method[:i], "/") {
		required, ok = p.required[method[:i]+"/*"]
	}
	if !ok {
		return nil
	}
	if principal == nil {
		return fmt.Errorf("%w: method %s requires one of scopes %s", ErrInsufficientScope, method, strings.Join(required, ", "))
	}
	for _, scope := range required {
		if principal.HasScope(scope) {
			return nil
		}
	}
	return fmt.Errorf("%w: method %s requires one of scopes %s", ErrInsufficientScope, method, strings.Join(required, ", "))
}

// DenyResponse renders a Policy denial as the JSON-RPC -32001 error
// response the MCP transport must return at HTTP 200 (authorization
// failures, unlike authentication failures, are protocol-level errors,
// not transport-level ones).
func DenyResponse(id jsonrpc.Id, err error) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, jsonrpc.NewError(jsonrpc.CodeUnauthorized, "insufficient scope", err.Error()))
}
