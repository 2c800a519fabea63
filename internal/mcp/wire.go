package mcp

// ServerInfo identifies this server to connecting clients during initialize.
type ServerInfo struct {
	Name    string
	Version string
}

// Config holds configuration for MCP provider services.
type Config struct {
	// ServerName is the name of the MCP server.
	ServerName string

	// ServerVersion is the version of the MCP server.
	ServerVersion string
}

// NewMCPServices creates the four provider registries and the Dispatcher
// that routes admitted requests to them. This is a convenience factory
// for dependency injection; callers register tools/resources/prompts on
// the returned registries before traffic starts flowing.
func NewMCPServices(cfg *Config) (dispatcher Dispatcher, tools ToolRegistry, resources ResourceRegistry, prompts PromptRegistry, logging LoggingHandler) {
	tools = NewToolRegistry()
	resources = NewResourceRegistry()
	prompts = NewPromptRegistry()
	logging = NewLoggingHandler()
	dispatcher = NewDispatcher(tools, resources, prompts, logging)
	return dispatcher, tools, resources, prompts, logging
}
