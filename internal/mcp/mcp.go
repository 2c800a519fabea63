// Package mcp provides the Model Context Protocol (MCP) message types,
// provider interfaces, and server-side dispatch that sit on top of the
// internal/jsonrpc wire codec and internal/lifecycle state machine.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

// ProtocolVersion is the MCP protocol version this implementation speaks.
const ProtocolVersion = "2025-06-18"

// Dispatcher processes an admitted, authenticated, authorized MCP
// request or notification and produces a response (for requests) or
// performs a side effect (for notifications).
type Dispatcher interface {
	// HandleRequest processes a request and returns its response. The
	// returned error is always nil for ordinary MCP failures, which are
	// instead carried as a Response with a non-nil Error; a non-nil
	// return here indicates a condition the caller must treat as fatal.
	HandleRequest(ctx context.Context, id jsonrpc.Id, method string, params json.RawMessage) (*jsonrpc.Response, error)

	// HandleNotification processes a fire-and-forget message. Handler
	// failures are logged internally and never surfaced to the caller.
	HandleNotification(ctx context.Context, method string, params json.RawMessage)
}

// ToolRegistry manages MCP tools. Implementations must be thread-safe:
// tools may be registered and executed concurrently.
type ToolRegistry interface {
	RegisterTool(name string, tool Tool) error
	GetTool(name string) (Tool, error)
	ListTools(cursor string) (items []ToolDefinition, nextCursor string)
}

// Tool is an executable MCP tool.
type Tool interface {
	// Execute runs the tool. Arguments have already been validated
	// against the tool's InputSchema by the dispatcher.
	Execute(ctx context.Context, args map[string]any) ([]Content, error)
	Definition() ToolDefinition
}

// ResourceRegistry manages MCP resources. Implementations must be
// thread-safe: resources may be registered and read concurrently.
type ResourceRegistry interface {
	RegisterResource(uri string, provider ResourceProvider) error
	GetResource(ctx context.Context, uri string) (*Resource, error)
	ListResources(cursor string) (items []ResourceDefinition, nextCursor string)
	ListTemplates(cursor string) (items []ResourceTemplate, nextCursor string)
}

// ResourceProvider provides access to one resource.
type ResourceProvider interface {
	Read(ctx context.Context) (*Resource, error)
	Definition() ResourceDefinition
}

// PromptRegistry manages MCP prompts. Implementations must be
// thread-safe: prompts may be registered and rendered concurrently.
type PromptRegistry interface {
	RegisterPrompt(name string, prompt Prompt) error
	GetPrompt(name string) (Prompt, error)
	ListPrompts(cursor string) (items []PromptDefinition, nextCursor string)
}

// Prompt renders a named prompt template into chat messages.
type Prompt interface {
	Render(ctx context.Context, args map[string]string) ([]PromptMessage, error)
	Definition() PromptDefinition
}

// LoggingHandler applies a minimum log level requested by a client via
// the logging/setLevel notification. Failures are logged, never
// surfaced as responses, because the method is a notification.
type LoggingHandler interface {
	SetLevel(ctx context.Context, level string) error
}
