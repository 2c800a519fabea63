package auth

import "context"

// noAuthStrategy admits every caller as an anonymous principal holding
// the wildcard scope. It exists for local development and STDIO
// deployments where the transport itself (a spawned subprocess) is the
// trust boundary.
type noAuthStrategy struct{}

// NewNoAuthStrategy creates a Strategy that performs no verification.
func NewNoAuthStrategy() Strategy {
	return noAuthStrategy{}
}

func (noAuthStrategy) Authenticate(_ context.Context, _ Metadata) (*Principal, error) {
	return &Principal{
		Subject: "anonymous",
		Scopes:  map[string]struct{}{ScopeWildcard: {}},
		Claims:  map[string]any{"auth": "none"},
	}, nil
}
