package mcp

// InitializeParams contains parameters for the initialize method.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ClientInfo      ClientInfo         `json:"clientInfo"`
	Capabilities    ClientCapabilities `json:"capabilities,omitempty"`
}

// ClientInfo contains metadata about the MCP client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities describes what the client supports. Roots and
// Sampling are the client-provided services a server may call back
// into; Tools/Resources/Prompts/Logging are rarely declared by a real
// client but are accepted here too so the negotiation in
// internal/lifecycle stays a uniform six-field intersection rather
// than special-casing which side may offer which feature.
type ClientCapabilities struct {
	Roots     *RootsCapability     `json:"roots,omitempty"`
	Sampling  *SamplingCapability  `json:"sampling,omitempty"`
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
	Logging   *LoggingCapability   `json:"logging,omitempty"`
}

// RootsCapability indicates roots support.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability indicates sampling support. Carries no options;
// actual sampling orchestration is left to the host (see Non-goals).
type SamplingCapability struct{}

// InitializeResult is the result of the initialize method.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      ServerInfoResponse `json:"serverInfo"`
	Capabilities    Capabilities       `json:"capabilities"`
}

// ServerInfoResponse contains metadata about the MCP server.
type ServerInfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities describes what the MCP server supports.
type Capabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
	Logging   *LoggingCapability   `json:"logging,omitempty"`
	Sampling  *SamplingCapability  `json:"sampling,omitempty"`
	Roots     *RootsCapability     `json:"roots,omitempty"`
}

// ToolsCapability indicates tools support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability indicates resources support.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability indicates prompts support.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability indicates logging support.
type LoggingCapability struct{}

// PingResult is the (empty) result of the ping method.
type PingResult struct{}

// ListParams is the common params shape for paginated listing methods.
type ListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ToolsListResult is the result of the tools/list method.
type ToolsListResult struct {
	Tools      []ToolDefinition `json:"tools"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// ToolsCallParams contains parameters for the tools/call method.
type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolsCallResult is the result of the tools/call method. IsError is
// true only for the application-level "tool not found" / execution
// failure cases that MCP requires to surface as a successful response.
type ToolsCallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is a tagged union of Text, Image, and Resource content blocks.
// Exactly the fields relevant to Type are populated.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Data     string    `json:"data,omitempty"`
	MimeType string    `json:"mimeType,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
}

// TextContent builds a Content block of type "text".
func TextContent(text string) Content { return Content{Type: "text", Text: text} }

// ImageContent builds a Content block of type "image".
func ImageContent(dataBase64, mimeType string) Content {
	return Content{Type: "image", Data: dataBase64, MimeType: mimeType}
}

// ResourceContentBlock builds a Content block of type "resource".
func ResourceContentBlock(r *Resource) Content {
	return Content{Type: "resource", Resource: r}
}

// ResourcesListResult is the result of the resources/list method.
type ResourcesListResult struct {
	Resources  []ResourceDefinition `json:"resources"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// ResourcesTemplatesListResult is the result of resources/templates/list.
type ResourcesTemplatesListResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string             `json:"nextCursor,omitempty"`
}

// ResourceTemplate is an RFC 6570 URI template describing a family of resources.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ResourcesReadParams contains parameters for the resources/read method.
type ResourcesReadParams struct {
	URI string `json:"uri"`
}

// ResourcesReadResult is the result of the resources/read method.
type ResourcesReadResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ResourceContent represents the content of a resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// ResourcesSubscribeParams contains parameters for resources/subscribe
// and resources/unsubscribe.
type ResourcesSubscribeParams struct {
	URI string `json:"uri"`
}

// ResourcesSubscribeResult is the result of a successful subscribe.
type ResourcesSubscribeResult struct {
	SubscriptionID string `json:"subscriptionId"`
}

// PromptsListResult is the result of the prompts/list method.
type PromptsListResult struct {
	Prompts    []PromptDefinition `json:"prompts"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// PromptDefinition describes a prompt for client discovery.
type PromptDefinition struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Arguments   []PromptArgumentSpec `json:"arguments,omitempty"`
}

// PromptArgumentSpec describes one named argument a prompt accepts.
type PromptArgumentSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptsGetParams contains parameters for the prompts/get method.
type PromptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// PromptsGetResult is the result of the prompts/get method.
type PromptsGetResult struct {
	Messages []PromptMessage `json:"messages"`
}

// PromptMessage is one message in a rendered prompt.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// LoggingSetLevelParams contains parameters for the logging/setLevel
// notification. There is deliberately no matching result type: MCP
// requires this method be handled as a notification with no response.
type LoggingSetLevelParams struct {
	Level string `json:"level"`
}

// CancelledParams contains parameters for the notifications/cancelled message.
type CancelledParams struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

// ResourcesUpdatedParams contains parameters for the server-to-client
// notifications/resources/updated message.
type ResourcesUpdatedParams struct {
	URI string `json:"uri"`
}

// Resource represents MCP resource content.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Text        string `json:"text,omitempty"`
	Size        uint64 `json:"size,omitempty"`
}

// ResourceDefinition describes a resource for client discovery.
type ResourceDefinition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ToolDefinition describes a tool's interface for client discovery.
type ToolDefinition struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}
