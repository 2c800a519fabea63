// Package handlers provides HTTP handlers for the transport layer.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/authz"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
	"github.com/mcpkit/mcpcore/internal/mcp"
	"github.com/mcpkit/mcpcore/internal/session"
	"github.com/mcpkit/mcpcore/internal/transport/internal/mocks"
)

// newTestEngineFactory builds a session.EngineFactory over a real
// Dispatcher (empty provider registries), NoAuth, and the default
// scope policy -- enough to drive the lifecycle and dispatch paths
// this handler exercises without a network-facing auth strategy.
func newTestEngineFactory() session.EngineFactory {
	dispatcher, _, _, _, _ := mcp.NewMCPServices(&mcp.Config{ServerName: "test", ServerVersion: "0"})
	return func() *session.Engine {
		return session.NewServerEngine(dispatcher, auth.NewNoAuthStrategy(), authz.NewPolicy(nil), "test", "0", session.DefaultServerCapabilities())
	}
}

func newTestResponder() *mocks.ErrorResponder {
	return &mocks.ErrorResponder{MetadataURL: "https://example.com/.well-known/oauth-protected-resource"}
}

func initializeBody() string {
	return `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"c","version":"0"}}}`
}

func TestMCPHandler_InitializeRequest(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(initializeBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.StatusCode)
	}
	if sid := resp.Header.Get(headerSessionID); sid == "" {
		t.Error("expected Mcp-Session-Id header on first response")
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("Content-Type = %v, want application/json", contentType)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["jsonrpc"] != "2.0" {
		t.Errorf("jsonrpc = %v, want 2.0", body["jsonrpc"])
	}
	if _, hasErr := body["error"]; hasErr {
		t.Errorf("unexpected error in initialize response: %v", body["error"])
	}
}

// TestMCPHandler_NotificationReturns204 is the S2 scenario: a
// notification (no "id") must get a bare 204, never a body.
func TestMCPHandler_NotificationReturns204(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	reqBody := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("notification status = %v, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("notification body = %q, want empty", w.Body.String())
	}
}

// TestMCPHandler_LifecycleRejection is the S3 scenario: a non-initialize
// request before initialize is rejected with -32600, HTTP 200.
func TestMCPHandler_LifecycleRejection(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	reqBody := `{"jsonrpc":"2.0","id":"x","method":"tools/list"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", w.Code)
	}

	var body struct {
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error == nil {
		t.Fatal("expected a JSON-RPC error")
	}
	if body.Error.Code != jsonrpc.CodeInvalidRequest {
		t.Errorf("error code = %v, want %v", body.Error.Code, jsonrpc.CodeInvalidRequest)
	}
}

// TestMCPHandler_SSEResponseMode covers the streamable transport's
// other response mode: an Accept header that asks for text/event-stream
// only gets back one SSE-framed event instead of a plain JSON body.
func TestMCPHandler_SSEResponseMode(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(initializeBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, contentTypeStream) {
		t.Errorf("Content-Type = %v, want %v", ct, contentTypeStream)
	}

	frame := w.Body.String()
	if !strings.HasPrefix(frame, "id: ") {
		t.Errorf("SSE frame missing id field: %q", frame)
	}
	if !strings.Contains(frame, "event: message\ndata: ") {
		t.Errorf("SSE frame missing event/data fields: %q", frame)
	}
	if !strings.HasSuffix(frame, "\n\n") {
		t.Errorf("SSE frame should end with a blank line: %q", frame)
	}
}

func TestMCPHandler_GET(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %v, want 405", w.Code)
	}
}

func TestMCPHandler_OtherMethods(t *testing.T) {
	t.Parallel()

	methods := []string{http.MethodPut, http.MethodPatch}

	for _, method := range methods {
		method := method
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

			req := httptest.NewRequest(method, "/mcp", nil)
			w := httptest.NewRecorder()

			mcpHandler.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s status = %v, want 405", method, w.Code)
			}
		})
	}
}

func TestMCPHandler_InvalidJSON(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("not valid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("invalid JSON status = %v, want 200", w.Code)
	}

	var body struct {
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error == nil {
		t.Fatal("expected a JSON-RPC error")
	}
	if body.Error.Code != jsonrpc.CodeParseError {
		t.Errorf("error code = %v, want %v (parse error)", body.Error.Code, jsonrpc.CodeParseError)
	}
}

func TestMCPHandler_EmptyBody(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("empty body status = %v, want 200", w.Code)
	}

	var body struct {
		Error *struct{ Code int } `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error == nil {
		t.Error("expected a JSON-RPC error for empty body")
	}
}

func TestMCPHandler_SessionPersistsAcrossRequests(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	initReq := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(initializeBody()))
	initReq.Header.Set("Content-Type", "application/json")
	initW := httptest.NewRecorder()
	mcpHandler.ServeHTTP(initW, initReq)

	sid := initW.Result().Header.Get(headerSessionID)
	if sid == "" {
		t.Fatal("expected session id from initialize response")
	}

	notifyReq := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	notifyReq.Header.Set("Content-Type", "application/json")
	notifyReq.Header.Set(headerSessionID, sid)
	notifyW := httptest.NewRecorder()
	mcpHandler.ServeHTTP(notifyW, notifyReq)
	if notifyW.Code != http.StatusNoContent {
		t.Fatalf("notifications/initialized status = %v, want 204", notifyW.Code)
	}

	listReq := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	listReq.Header.Set("Content-Type", "application/json")
	listReq.Header.Set(headerSessionID, sid)
	listW := httptest.NewRecorder()
	mcpHandler.ServeHTTP(listW, listReq)

	if listW.Code != http.StatusOK {
		t.Fatalf("tools/list status = %v, want 200", listW.Code)
	}
	var body struct {
		Result *struct {
			Tools []any `json:"tools"`
		} `json:"result"`
		Error *struct{ Code int } `json:"error"`
	}
	if err := json.NewDecoder(listW.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error != nil {
		t.Fatalf("tools/list after handshake returned error: %+v", body.Error)
	}
	if body.Result == nil {
		t.Fatal("expected a result for tools/list after handshake")
	}
}

func TestMCPHandler_DeleteUnknownSession(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 0)

	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Header.Set(headerSessionID, "unknown-session")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE unknown session status = %v, want 404", w.Code)
	}
}

func TestMCPHandler_DeleteMissingSessionHeader(t *testing.T) {
	t.Parallel()

	responder := newTestResponder()
	mcpHandler := NewMCPHandler(newTestEngineFactory(), responder, 0)

	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if !responder.BadRequestCalled {
		t.Error("expected BadRequest to be called for a DELETE with no session header")
	}
}

func TestMCPHandler_LargeRequestRejected(t *testing.T) {
	t.Parallel()

	mcpHandler := NewMCPHandler(newTestEngineFactory(), newTestResponder(), 16)

	largeParams := strings.Repeat("x", 1000)
	reqBody := `{"jsonrpc":"2.0","id":1,"method":"test","params":"` + largeParams + `"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mcpHandler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized request status = %v, want 413", w.Code)
	}
}
