package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

func newTestDispatcher(t *testing.T) (Dispatcher, ToolRegistry, ResourceRegistry, PromptRegistry) {
	t.Helper()
	tools := NewToolRegistry()
	resources := NewResourceRegistry()
	prompts := NewPromptRegistry()
	logging := NewLoggingHandler()
	return NewDispatcher(tools, resources, prompts, logging), tools, resources, prompts
}

func TestDispatcher_Ping(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(1), "ping", nil)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("ping returned error: %+v", resp.Error)
	}
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(1), "bogus/method", nil)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !resp.IsError() || resp.Error.Code != jsonrpc.CodeMethodNotFound {
		t.Fatalf("want MethodNotFound, got %+v", resp.Error)
	}
}

func TestDispatcher_ToolsCallUnknownToolIsSuccessfulIsError(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	params, _ := json.Marshal(ToolsCallParams{Name: "does-not-exist"})
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(1), "tools/call", params)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("unknown tool must be a successful response with isError:true, got JSON-RPC error: %+v", resp.Error)
	}
	result, ok := resp.Result.(ToolsCallResult)
	if !ok {
		t.Fatalf("result is %T, want ToolsCallResult", resp.Result)
	}
	if !result.IsError {
		t.Fatal("want IsError true for unknown tool name")
	}
}

func TestDispatcher_ToolsCallExecutes(t *testing.T) {
	d, tools, _, _ := newTestDispatcher(t)
	_ = tools.RegisterTool("echo", &stubTool{
		def: ToolDefinition{Name: "echo", Description: "echoes args"},
		fn: func(ctx context.Context, args map[string]any) ([]Content, error) {
			return []Content{TextContent("ok")}, nil
		},
	})

	params, _ := json.Marshal(ToolsCallParams{Name: "echo"})
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(2), "tools/call", params)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	result := resp.Result.(ToolsCallResult)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	if len(result.Content) != 1 || result.Content[0].Text != "ok" {
		t.Fatalf("unexpected content: %+v", result.Content)
	}
}

func TestDispatcher_ResourcesReadUnknownURIIsInvalidParams(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	params, _ := json.Marshal(ResourcesReadParams{URI: "file:///does/not/exist"})
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(3), "resources/read", params)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !resp.IsError() || resp.Error.Code != jsonrpc.CodeInvalidParams {
		t.Fatalf("want InvalidParams for unknown resource uri, got %+v", resp.Error)
	}
}

func TestDispatcher_PromptsGetUnknownIsMethodNotFound(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	params, _ := json.Marshal(PromptsGetParams{Name: "does-not-exist"})
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(4), "prompts/get", params)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !resp.IsError() || resp.Error.Code != jsonrpc.CodeMethodNotFound {
		t.Fatalf("want MethodNotFound for unknown prompt, got %+v", resp.Error)
	}
}

func TestDispatcher_ToolsCallInvalidArguments(t *testing.T) {
	d, tools, _, _ := newTestDispatcher(t)
	_ = tools.RegisterTool("strict", &stubTool{
		def: ToolDefinition{
			Name: "strict",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
				},
			},
		},
		fn: func(ctx context.Context, args map[string]any) ([]Content, error) {
			return []Content{TextContent("ok")}, nil
		},
	})

	params, _ := json.Marshal(ToolsCallParams{Name: "strict", Arguments: map[string]any{}})
	resp, err := d.HandleRequest(context.Background(), jsonrpc.NewIntId(5), "tools/call", params)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !resp.IsError() || resp.Error.Code != jsonrpc.CodeInvalidParams {
		t.Fatalf("want InvalidParams for missing required argument, got %+v", resp.Error)
	}
}

func TestDispatcher_LoggingSetLevelNotificationAppliesLevel(t *testing.T) {
	tools := NewToolRegistry()
	resources := NewResourceRegistry()
	prompts := NewPromptRegistry()
	logging := NewLoggingHandler()
	d := NewDispatcher(tools, resources, prompts, logging)

	params, _ := json.Marshal(LoggingSetLevelParams{Level: "debug"})
	d.HandleNotification(context.Background(), "logging/setLevel", params)

	if got := logging.(*loggingHandler).Level(); got != "debug" {
		t.Fatalf("level = %q, want debug", got)
	}
}

// stubTool is a minimal Tool for dispatcher tests.
type stubTool struct {
	def ToolDefinition
	fn  func(ctx context.Context, args map[string]any) ([]Content, error)
}

func (s *stubTool) Execute(ctx context.Context, args map[string]any) ([]Content, error) {
	return s.fn(ctx, args)
}
func (s *stubTool) Definition() ToolDefinition { return s.def }
