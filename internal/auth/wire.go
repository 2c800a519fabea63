package auth

import (
	"fmt"

	"github.com/mcpkit/mcpcore/internal/oauth"
)

// StrategyKind selects which Strategy NewStrategy builds.
type StrategyKind string

const (
	StrategyNone   StrategyKind = "none"
	StrategyApiKey StrategyKind = "apikey"
	StrategyOAuth2 StrategyKind = "oauth2"
)

// Config holds the inputs needed to construct any supported Strategy.
type Config struct {
	Kind StrategyKind

	// ApiKeyHeader and ApiKeyScopes configure StrategyApiKey.
	ApiKeyHeader string
	ApiKeyScopes map[string][]string

	// TokenValidator configures StrategyOAuth2; callers build it via
	// oauth.NewOAuthServices and pass it through.
	TokenValidator oauth.TokenValidator
}

// NewStrategy builds the Strategy selected by cfg.Kind.
func NewStrategy(cfg *Config) (Strategy, error) {
	switch cfg.Kind {
	case "", StrategyNone:
		return NewNoAuthStrategy(), nil
	case StrategyApiKey:
		if len(cfg.ApiKeyScopes) == 0 {
			return nil, fmt.Errorf("auth: apikey strategy requires at least one configured key")
		}
		header := cfg.ApiKeyHeader
		if header == "" {
			header = "X-Api-Key"
		}
		return NewApiKeyStrategy(header, cfg.ApiKeyScopes), nil
	case StrategyOAuth2:
		if cfg.TokenValidator == nil {
			return nil, fmt.Errorf("auth: oauth2 strategy requires a TokenValidator")
		}
		return NewOAuth2Strategy(cfg.TokenValidator), nil
	default:
		return nil, fmt.Errorf("auth: unknown strategy kind %q", cfg.Kind)
	}
}
