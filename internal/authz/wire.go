package authz

// Config holds the inputs needed to construct a Policy.
type Config struct {
	// MethodScopes overrides DefaultMethodScopes when non-nil.
	MethodScopes map[string][]string
}

// NewPolicy builds the default scope-based Policy.
func NewPolicy(cfg *Config) Policy {
	scopes := DefaultMethodScopes()
	if cfg != nil && cfg.MethodScopes != nil {
		scopes = cfg.MethodScopes
	}
	return NewScopePolicy(scopes)
}
