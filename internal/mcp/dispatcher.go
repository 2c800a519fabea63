package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

// dispatcher implements Dispatcher, routing admitted MCP requests and
// notifications to the four provider roles and converting provider
// errors to JSON-RPC errors per the asymmetric policy in §4.7.
type dispatcher struct {
	tools     ToolRegistry
	resources ResourceRegistry
	prompts   PromptRegistry
	logging   LoggingHandler
}

// NewDispatcher builds a Dispatcher over the four provider registries.
// Any registry may be nil, in which case its methods answer
// InternalError (-32603, "no ... provider configured") rather than
// panicking.
func NewDispatcher(tools ToolRegistry, resources ResourceRegistry, prompts PromptRegistry, logging LoggingHandler) Dispatcher {
	return &dispatcher{tools: tools, resources: resources, prompts: prompts, logging: logging}
}

// HandleRequest implements Dispatcher.
func (d *dispatcher) HandleRequest(ctx context.Context, id jsonrpc.Id, method string, params json.RawMessage) (resp *jsonrpc.Response, fatal error) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResult(id, jsonrpc.CodeInternalError, "internal error", nil)
		}
	}()

	switch {
	case method == "ping":
		return jsonrpc.NewResult(id, PingResult{}), nil

	case strings.HasPrefix(method, "resources/"):
		return d.handleResources(id, method, params), nil

	case strings.HasPrefix(method, "tools/"):
		return d.handleTools(ctx, id, method, params), nil

	case strings.HasPrefix(method, "prompts/"):
		return d.handlePrompts(ctx, id, method, params), nil

	default:
		return errorResult(id, jsonrpc.CodeMethodNotFound, fmt.Sprintf("method not found: %s", method), nil), nil
	}
}

// HandleNotification implements Dispatcher. Only logging/setLevel is a
// notification among the provider-routed methods; all others
// (initialize, notifications/initialized, notifications/cancelled) are
// lifecycle concerns handled upstream of the dispatcher.
func (d *dispatcher) HandleNotification(ctx context.Context, method string, params json.RawMessage) {
	defer func() { _ = recover() }()

	if method != "logging/setLevel" {
		return
	}
	if d.logging == nil {
		return
	}
	var p LoggingSetLevelParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			slog.Warn("logging/setLevel: malformed params", "error", err)
			return
		}
	}
	if err := d.logging.SetLevel(ctx, p.Level); err != nil {
		slog.Warn("logging/setLevel rejected", "level", p.Level, "error", err)
	}
}

func (d *dispatcher) handleResources(id jsonrpc.Id, method string, params json.RawMessage) *jsonrpc.Response {
	if d.resources == nil {
		return errorResult(id, jsonrpc.CodeInternalError, "no resource provider configured", nil)
	}

	switch method {
	case "resources/list":
		var p ListParams
		_ = json.Unmarshal(params, &p)
		items, next := d.resources.ListResources(p.Cursor)
		return jsonrpc.NewResult(id, ResourcesListResult{Resources: items, NextCursor: next})

	case "resources/templates/list":
		var p ListParams
		_ = json.Unmarshal(params, &p)
		items, next := d.resources.ListTemplates(p.Cursor)
		return jsonrpc.NewResult(id, ResourcesTemplatesListResult{ResourceTemplates: items, NextCursor: next})

	case "resources/read":
		var p ResourcesReadParams
		if err := json.Unmarshal(params, &p); err != nil || p.URI == "" {
			return errorResult(id, jsonrpc.CodeInvalidParams, "resource uri is required", nil)
		}
		resource, err := d.resources.GetResource(context.Background(), p.URI)
		if err != nil {
			// Unknown URI (unregistered, or a scheme no provider
			// recognizes) is an application-level InvalidParams, not
			// MethodNotFound: the method itself is perfectly valid.
			if errors.Is(err, ErrResourceNotFound) || errors.Is(err, ErrUnknownURIScheme) {
				return errorResult(id, jsonrpc.CodeInvalidParams, fmt.Sprintf("unknown resource uri: %s", p.URI), nil)
			}
			return errorResult(id, jsonrpc.CodeInternalError, "failed to read resource", sanitize(err))
		}
		return jsonrpc.NewResult(id, ResourcesReadResult{Contents: []ResourceContent{
			{URI: resource.URI, MimeType: resource.MimeType, Text: resource.Text},
		}})

	case "resources/subscribe", "resources/unsubscribe":
		// Contract-only per this module's Non-goals: acknowledge without
		// a concrete watcher implementation.
		var p ResourcesSubscribeParams
		if err := json.Unmarshal(params, &p); err != nil || p.URI == "" {
			return errorResult(id, jsonrpc.CodeInvalidParams, "resource uri is required", nil)
		}
		if method == "resources/subscribe" {
			return jsonrpc.NewResult(id, ResourcesSubscribeResult{SubscriptionID: "sub-" + p.URI})
		}
		return jsonrpc.NewResult(id, struct{}{})

	default:
		return errorResult(id, jsonrpc.CodeMethodNotFound, fmt.Sprintf("method not found: %s", method), nil)
	}
}

func (d *dispatcher) handleTools(ctx context.Context, id jsonrpc.Id, method string, params json.RawMessage) *jsonrpc.Response {
	if d.tools == nil {
		return errorResult(id, jsonrpc.CodeInternalError, "no tool provider configured", nil)
	}

	switch method {
	case "tools/list":
		var p ListParams
		_ = json.Unmarshal(params, &p)
		items, next := d.tools.ListTools(p.Cursor)
		return jsonrpc.NewResult(id, ToolsListResult{Tools: items, NextCursor: next})

	case "tools/call":
		var p ToolsCallParams
		if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
			return errorResult(id, jsonrpc.CodeInvalidParams, "tool name is required", nil)
		}

		tool, err := d.tools.GetTool(p.Name)
		if err != nil {
			if errors.Is(err, ErrToolNotFound) {
				// Unknown tool name is counterintuitively a *successful*
				// response with isError:true — this matches observed MCP
				// Inspector behavior and is required by §4.7/§9.
				return jsonrpc.NewResult(id, ToolsCallResult{
					Content: []Content{TextContent(fmt.Sprintf("tool not found: %s", p.Name))},
					IsError: true,
				})
			}
			return errorResult(id, jsonrpc.CodeInternalError, "failed to get tool", sanitize(err))
		}

		if err := validateArguments(tool.Definition().InputSchema, p.Arguments); err != nil {
			return errorResult(id, jsonrpc.CodeInvalidParams, "invalid tool arguments", err.Error())
		}

		content, err := tool.Execute(ctx, p.Arguments)
		if err != nil {
			return jsonrpc.NewResult(id, ToolsCallResult{
				Content: []Content{TextContent(sanitizeMessage(err))},
				IsError: true,
			})
		}
		return jsonrpc.NewResult(id, ToolsCallResult{Content: content})

	default:
		return errorResult(id, jsonrpc.CodeMethodNotFound, fmt.Sprintf("method not found: %s", method), nil)
	}
}

func (d *dispatcher) handlePrompts(ctx context.Context, id jsonrpc.Id, method string, params json.RawMessage) *jsonrpc.Response {
	if d.prompts == nil {
		return errorResult(id, jsonrpc.CodeInternalError, "no prompt provider configured", nil)
	}

	switch method {
	case "prompts/list":
		var p ListParams
		_ = json.Unmarshal(params, &p)
		items, next := d.prompts.ListPrompts(p.Cursor)
		return jsonrpc.NewResult(id, PromptsListResult{Prompts: items, NextCursor: next})

	case "prompts/get":
		var p PromptsGetParams
		if err := json.Unmarshal(params, &p); err != nil || p.Name == "" {
			return errorResult(id, jsonrpc.CodeInvalidParams, "prompt name is required", nil)
		}
		prompt, err := d.prompts.GetPrompt(p.Name)
		if err != nil {
			if errors.Is(err, ErrPromptNotFound) {
				// Unknown prompt name is MethodNotFound, unlike unknown
				// tool name — the third leg of the asymmetric triad §9.2.
				return errorResult(id, jsonrpc.CodeMethodNotFound, fmt.Sprintf("prompt not found: %s", p.Name), nil)
			}
			return errorResult(id, jsonrpc.CodeInternalError, "failed to get prompt", sanitize(err))
		}
		messages, err := prompt.Render(ctx, p.Arguments)
		if err != nil {
			return errorResult(id, jsonrpc.CodeInternalError, "failed to render prompt", sanitize(err))
		}
		return jsonrpc.NewResult(id, PromptsGetResult{Messages: messages})

	default:
		return errorResult(id, jsonrpc.CodeMethodNotFound, fmt.Sprintf("method not found: %s", method), nil)
	}
}

// validateArguments checks args against a JSON-schema InputSchema before
// a tool executes. A nil/empty schema admits anything.
func validateArguments(schema map[string]any, args map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	schemaLoader := gojsonschema.NewGoLoader(schema)
	docLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return internalerrors.New("mcp", "validateArguments", internalerrors.ErrBadRequest, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func errorResult(id jsonrpc.Id, code int, message string, data any) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, jsonrpc.NewError(code, message, data))
}

// sanitize strips an internal error down to a message safe to place in
// a JSON-RPC error's data field: never paths, stack traces, or secrets.
func sanitize(err error) string {
	return sanitizeMessage(err)
}

func sanitizeMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *internalerrors.DomainError
	if errors.As(err, &de) {
		return fmt.Sprintf("%s: %s", de.Domain, de.Op)
	}
	return "operation failed"
}
