package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/session"
	"github.com/mcpkit/mcpcore/internal/transport/transportcore"
)

const (
	headerSessionID   = "Mcp-Session-Id"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeStream = "text/event-stream"

	defaultMaxBodyBytes = 4 << 20 // 4 MiB, overridable via NewMCPHandler's maxBody.
)

// mcpHandler implements the Streamable HTTP transport (§4.3.2): POST
// /mcp carries one JSON-RPC request or notification per call; a
// session is established by the first successful response and
// threaded through Mcp-Session-Id thereafter. Requests preceding a
// session (i.e. "initialize") get a new Engine; everything else must
// carry a known session id.
type mcpHandler struct {
	newEngine session.EngineFactory
	responder transportcore.ErrorResponder
	maxBody   int64

	mu       sync.RWMutex
	sessions map[string]*session.Engine
}

// NewMCPHandler builds the HTTP handler for the /mcp route. maxBody
// bounds the request body size (0 selects the 4 MiB default, matching
// MCP_HTTP_MAX_BODY_BYTES's default in internal/config).
func NewMCPHandler(newEngine session.EngineFactory, responder transportcore.ErrorResponder, maxBody int64) http.Handler {
	if newEngine == nil {
		panic("newEngine cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &mcpHandler{
		newEngine: newEngine,
		responder: responder,
		maxBody:   maxBody,
		sessions:  make(map[string]*session.Engine),
	}
}

func (h *mcpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", http.MethodPost+", "+http.MethodDelete)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *mcpHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("mcp: request body exceeds max size", "error", err)
			h.responder.TooLarge(w, err)
			return
		}
		slog.Warn("mcp: request body unreadable", "error", err)
		h.responder.BadRequest(w, err)
		return
	}

	sessionID := r.Header.Get(headerSessionID)
	engine, existing := h.engineFor(sessionID)

	md := auth.Metadata{Headers: map[string][]string(r.Header)}
	result := engine.Handle(r.Context(), md, body)

	switch result.Kind {
	case session.KindNoContent:
		if !existing {
			h.persist(engine)
			w.Header().Set(headerSessionID, h.sessionIDOf(engine))
		}
		w.WriteHeader(http.StatusNoContent)

	case session.KindUnauthenticated:
		h.responder.Unauthorized(w, "", result.AuthErr)

	case session.KindResponse:
		if !existing {
			h.persist(engine)
		}
		w.Header().Set(headerSessionID, h.sessionIDOf(engine))
		if prefersStream(r.Header.Get(headerAccept)) {
			h.writeSSE(w, result.Response)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(result.Response); err != nil {
			slog.Warn("mcp: failed writing response body", "error", err)
		}
	}
}

// prefersStream reports whether an Accept header asks for an SSE
// response over plain JSON. A client that only accepts JSON (or sends
// no Accept header) gets the plain body; the streamable adapter's SSE
// mode is opt-in.
func prefersStream(accept string) bool {
	return strings.Contains(accept, contentTypeStream) && !strings.Contains(accept, contentTypeJSON+",")
}

// writeSSE delivers a single JSON-RPC response as one SSE event. The
// event id lets a client that drops the connection mid-stream resume
// with Last-Event-ID; since one POST carries exactly one envelope here
// there is nothing to replay past that id, only to acknowledge it was
// the last (and only) event sent.
func (h *mcpHandler) writeSSE(w http.ResponseWriter, payload []byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}
	w.Header().Set("Content-Type", contentTypeStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", uuid.NewString(), payload)
	flusher.Flush()
}

func (h *mcpHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(headerSessionID)
	if sessionID == "" {
		h.responder.BadRequest(w, errMissingSessionID)
		return
	}
	h.mu.Lock()
	engine, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	engine.Connection().ShutdownNow()
	w.WriteHeader(http.StatusOK)
}

// engineFor looks up the Engine for an established session, or mints a
// fresh one (not yet registered: only requests that actually complete
// a handshake get a persisted session id) when sessionID is unknown.
func (h *mcpHandler) engineFor(sessionID string) (engine *session.Engine, existing bool) {
	if sessionID != "" {
		h.mu.RLock()
		e, ok := h.sessions[sessionID]
		h.mu.RUnlock()
		if ok {
			return e, true
		}
	}
	return h.newEngine(), false
}

func (h *mcpHandler) persist(engine *session.Engine) {
	sid := generateSessionID()
	engine.Connection().SetSessionID(sid)
	h.mu.Lock()
	h.sessions[sid] = engine
	h.mu.Unlock()
}

func (h *mcpHandler) sessionIDOf(engine *session.Engine) string {
	return engine.Connection().SessionID()
}

func generateSessionID() string {
	return uuid.NewString()
}

var errMissingSessionID = &missingSessionIDError{}

type missingSessionIDError struct{}

func (*missingSessionIDError) Error() string { return "missing " + headerSessionID + " header" }
