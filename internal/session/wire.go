package session

import (
	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/authz"
	"github.com/mcpkit/mcpcore/internal/lifecycle"
	"github.com/mcpkit/mcpcore/internal/mcp"
)

// DefaultServerCapabilities offers every provider-backed capability
// this implementation's dispatcher knows how to serve. A deployment
// that omits a provider (e.g. no PromptRegistry) should narrow this
// before passing it to New, since an offered-but-unserved capability
// reaches the dispatcher's "-32603 no provider configured" branch
// instead of failing negotiation up front.
func DefaultServerCapabilities() lifecycle.Capabilities {
	return lifecycle.Capabilities{
		Tools:     &lifecycle.ToolsCapability{ListChanged: true},
		Resources: &lifecycle.ResourcesCapability{Subscribe: true, ListChanged: true},
		Prompts:   &lifecycle.PromptsCapability{ListChanged: true},
		Logging:   &lifecycle.LoggingCapability{},
	}
}

// EngineFactory mints a fresh Engine for a new connection (one per
// subprocess for STDIO, one per Mcp-Session-Id for HTTP). Lifecycle
// state is per-connection, so no Engine is shared across connections.
type EngineFactory func() *Engine

// NewServerEngine is a convenience constructor for the common case: one
// dispatcher, one auth strategy, one authz policy, one server identity.
func NewServerEngine(dispatcher mcp.Dispatcher, authStrategy auth.Strategy, authzPolicy authz.Policy, serverName, serverVersion string, caps lifecycle.Capabilities) *Engine {
	return New(Config{
		Dispatcher:         dispatcher,
		AuthStrategy:       authStrategy,
		AuthzPolicy:        authzPolicy,
		ServerName:         serverName,
		ServerVersion:      serverVersion,
		ServerCapabilities: caps,
	})
}
