package correlation

import "time"

// Config holds the correlation registry's defaults.
type Config struct {
	// DefaultTimeout applies to Send calls that do not specify their own.
	DefaultTimeout time.Duration
}

// NewCorrelationServices builds a Registry from a Sender and config.
// This mirrors the dependency-injection factory convention used
// throughout this module's packages.
func NewCorrelationServices(sender Sender, cfg *Config) *Registry {
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.DefaultTimeout
	}
	return NewRegistry(sender, ttl)
}
