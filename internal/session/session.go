// Package session wires the wire codec, authentication, authorization,
// lifecycle state machine, and dispatcher into the single inbound
// pipeline every transport drives: C1 parse -> C8 authenticate -> C9
// authorize -> C6 phase/capability admission -> C7 dispatch -> C1
// encode (see SPEC_FULL.md §2's server data-flow). Both the STDIO and
// HTTP adapters hand raw bytes to one Engine per connection; neither
// transport re-implements this ordering itself.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/authz"
	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
	"github.com/mcpkit/mcpcore/internal/lifecycle"
	"github.com/mcpkit/mcpcore/internal/mcp"
)

// Kind classifies the outcome of handling one inbound message, telling
// the transport what to do with it: write a body, write nothing, or
// map an authentication failure to its transport-specific signal
// (HTTP 401; a JSON-RPC -32001 stand-in for STDIO, which has no status
// codes).
type Kind int

const (
	// KindResponse carries a JSON-RPC response the transport must send.
	KindResponse Kind = iota
	// KindNoContent means the inbound message was a notification (or an
	// unauthorized/denied notification): emit no body at all (HTTP 204,
	// no STDIO line).
	KindNoContent
	// KindUnauthenticated means authentication failed for a request.
	// This is a transport-level condition (HTTP 401 + WWW-Authenticate),
	// never a JSON-RPC response body.
	KindUnauthenticated
)

// Result is what Engine.Handle returns for one inbound message.
type Result struct {
	Kind     Kind
	Response []byte // set when Kind == KindResponse
	AuthErr  error  // set when Kind == KindUnauthenticated
}

// Engine owns one MCP connection's lifecycle state and runs every
// inbound message through the full pipeline. It is not safe to share
// across independent connections: each transport connection (one
// subprocess, one HTTP session) gets its own Engine instance.
type Engine struct {
	conn       *lifecycle.Connection
	dispatcher mcp.Dispatcher
	authn      auth.Strategy
	authz      authz.Policy
	serverInfo mcp.ServerInfo
	serverCaps lifecycle.Capabilities
	logger     *slog.Logger
}

// Config holds the collaborators one Engine is built from.
type Config struct {
	Dispatcher        mcp.Dispatcher
	AuthStrategy      auth.Strategy
	AuthzPolicy       authz.Policy
	ServerName        string
	ServerVersion     string
	ServerCapabilities lifecycle.Capabilities
	Logger            *slog.Logger
}

// New builds an Engine in the Initialization phase.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		conn:       lifecycle.NewConnection(),
		dispatcher: cfg.Dispatcher,
		authn:      cfg.AuthStrategy,
		authz:      cfg.AuthzPolicy,
		serverInfo: mcp.ServerInfo{Name: cfg.ServerName, Version: cfg.ServerVersion},
		serverCaps: cfg.ServerCapabilities,
		logger:     logger,
	}
}

// Connection exposes the underlying lifecycle connection, e.g. so a
// transport can call ShutdownNow() on close or read the SessionID.
func (e *Engine) Connection() *lifecycle.Connection { return e.conn }

// Handle runs one inbound message (request or notification) through
// the full pipeline and produces the Result the transport should act
// on. md carries whatever transport-level credentials are available
// (HTTP headers; empty for STDIO).
func (e *Engine) Handle(ctx context.Context, md auth.Metadata, raw []byte) Result {
	env := jsonrpc.ParseAndValidate(raw)

	switch env.Kind {
	case jsonrpc.KindInvalid:
		return e.handleInvalid(env)
	case jsonrpc.KindNotification:
		e.handleNotification(ctx, md, env.Notification)
		return Result{Kind: KindNoContent}
	case jsonrpc.KindRequest:
		return e.handleRequest(ctx, md, env.Request)
	case jsonrpc.KindResponse:
		// A server-side Engine never receives a bare Response on its
		// request-response channel; bidirectional (sampling) traffic is
		// out of scope (see Non-goals). Treat it as a protocol error.
		return e.errorResult(jsonrpc.NullId(), jsonrpc.CodeInvalidRequest, "unexpected response envelope", nil)
	default:
		return e.errorResult(jsonrpc.NullId(), jsonrpc.CodeInternalError, "unclassified envelope", nil)
	}
}

func (e *Engine) handleInvalid(env jsonrpc.Envelope) Result {
	if env.ParseErr != nil {
		return e.errorResult(jsonrpc.NullId(), jsonrpc.CodeParseError, "parse error", nil)
	}
	id := env.EchoedID
	if !id.IsSet() {
		id = jsonrpc.NullId()
	}
	return e.errorResult(id, jsonrpc.CodeInvalidRequest, "invalid request", env.InvalidErr.Error())
}

func (e *Engine) handleNotification(ctx context.Context, md auth.Metadata, n *jsonrpc.Notification) {
	principal, err := e.authn.Authenticate(ctx, md)
	if err != nil {
		e.logger.Warn("dropping unauthenticated notification", "method", n.Method, "error", err)
		return
	}
	ctx = auth.ContextWithPrincipal(ctx, principal)

	if err := e.authz.Authorize(ctx, principal, n.Method); err != nil {
		e.logger.Warn("dropping unauthorized notification", "method", n.Method, "error", err)
		return
	}

	if err := e.conn.Admit(n.Method); err != nil {
		e.logger.Debug("dropping notification not admissible in current phase", "method", n.Method, "phase", e.conn.Phase().String())
		return
	}

	switch n.Method {
	case "notifications/initialized":
		if err := e.conn.ConfirmInitialized(); err != nil {
			e.logger.Warn("notifications/initialized rejected", "error", err)
		}
	case "notifications/cancelled":
		var p mcp.CancelledParams
		_ = json.Unmarshal(n.Params, &p)
		e.logger.Debug("peer cancelled request", "request_id", p.RequestID, "reason", p.Reason)
	default:
		e.dispatcher.HandleNotification(ctx, n.Method, n.Params)
	}
}

func (e *Engine) handleRequest(ctx context.Context, md auth.Metadata, req *jsonrpc.Request) Result {
	principal, err := e.authn.Authenticate(ctx, md)
	if err != nil {
		return Result{Kind: KindUnauthenticated, AuthErr: err}
	}
	ctx = auth.ContextWithPrincipal(ctx, principal)

	if err := e.authz.Authorize(ctx, principal, req.Method); err != nil {
		return Result{Kind: KindResponse, Response: e.encode(authz.DenyResponse(req.ID, err))}
	}

	if req.Method == "initialize" {
		return e.handleInitialize(req)
	}

	if err := e.conn.Admit(req.Method); err != nil {
		return e.errorResult(req.ID, admitErrorCode(err), err.Error(), nil)
	}

	resp, fatal := e.dispatcher.HandleRequest(ctx, req.ID, req.Method, req.Params)
	if fatal != nil {
		return e.errorResult(req.ID, jsonrpc.CodeInternalError, "internal error", nil)
	}
	return Result{Kind: KindResponse, Response: e.encode(resp)}
}

func (e *Engine) handleInitialize(req *jsonrpc.Request) Result {
	if e.conn.Phase() != lifecycle.Initialization {
		return e.errorResult(req.ID, jsonrpc.CodeInvalidRequest, "already initialized", nil)
	}

	var params mcp.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return e.errorResult(req.ID, jsonrpc.CodeInvalidParams, "invalid initialize params", nil)
		}
	}
	if params.ProtocolVersion != mcp.ProtocolVersion {
		return e.errorResult(req.ID, jsonrpc.CodeInvalidRequest, fmt.Sprintf("unsupported protocolVersion: %s", params.ProtocolVersion), nil)
	}

	clientCaps := params.Capabilities.ToLifecycle()
	if err := e.conn.CompleteInitialize(lifecycle.PeerInfo{Name: params.ClientInfo.Name, Version: params.ClientInfo.Version}, clientCaps, e.serverCaps); err != nil {
		return e.errorResult(req.ID, jsonrpc.CodeInvalidRequest, "already initialized", nil)
	}

	result := mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		ServerInfo:      mcp.ServerInfoResponse{Name: e.serverInfo.Name, Version: e.serverInfo.Version},
		Capabilities:    mcp.CapabilitiesFromLifecycle(e.conn.Capabilities()),
	}
	return Result{Kind: KindResponse, Response: e.encode(jsonrpc.NewResult(req.ID, result))}
}

// admitErrorCode maps a lifecycle.Connection.Admit failure to the
// JSON-RPC code SPEC_FULL.md §4.6 requires: an un-negotiated
// capability is MethodNotFound; every other admission failure (wrong
// phase, connection shutting down) is InvalidRequest.
func admitErrorCode(err error) int {
	if errors.Is(err, lifecycle.ErrCapabilityNotNegotiated) {
		return jsonrpc.CodeMethodNotFound
	}
	return jsonrpc.CodeInvalidRequest
}

func (e *Engine) errorResult(id jsonrpc.Id, code int, message string, data any) Result {
	resp := jsonrpc.NewErrorResponse(id, jsonrpc.NewError(code, message, data))
	return Result{Kind: KindResponse, Response: e.encode(resp)}
}

func (e *Engine) encode(resp *jsonrpc.Response) []byte {
	b, err := jsonrpc.Encode(resp)
	if err != nil {
		// Encode only fails for envelope types it doesn't recognize;
		// *jsonrpc.Response always marshals. Fall back to a minimal,
		// hand-built InternalError so a caller always gets bytes back.
		fallback := internalerrors.New("session", "encode", internalerrors.ErrInternal, err)
		e.logger.Error("failed to encode response", "error", fallback)
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return b
}
