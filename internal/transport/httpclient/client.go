// Package httpclient implements the client side of the HTTP transport
// adapter (§4.3.2): POST to a single /mcp endpoint, persist the
// Mcp-Session-Id the server hands back on the first response, and
// accept either a plain JSON reply or an SSE stream carrying one.
package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

const (
	headerSessionID      = "Mcp-Session-Id"
	headerProtocolVer    = "MCP-Protocol-Version"
	headerLastEventID    = "Last-Event-ID"
	protocolVersionValue = "2025-06-18"
)

// ResponseRouter is satisfied by *correlation.Registry.
type ResponseRouter interface {
	Resolve(resp *jsonrpc.Response) error
}

// Client implements transport.Client over HTTP POST to a single /mcp
// endpoint. One Client corresponds to one logical MCP session: the
// server-issued Mcp-Session-Id is captured from the first response and
// echoed on every subsequent request.
type Client struct {
	httpClient *http.Client
	endpoint   string
	bearer     string
	router     ResponseRouter

	mu            sync.RWMutex
	sessionID     string
	lastEventID   string
	closed        bool
	requestsInAir int64
}

// Options configures New.
type Options struct {
	// Endpoint is the full URL of the server's /mcp route.
	Endpoint string
	// BearerToken, if set, is sent as "Authorization: Bearer <token>".
	BearerToken string
	// HTTPClient overrides the default client (e.g. for custom
	// transports/timeouts); a zero value uses http.DefaultClient's
	// settings with no timeout override.
	HTTPClient *http.Client
	// Router resolves inbound response envelopes against the caller's
	// correlation registry. Required.
	Router ResponseRouter
}

// New builds a Client bound to one /mcp endpoint.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		httpClient: hc,
		endpoint:   opts.Endpoint,
		bearer:     opts.BearerToken,
		router:     opts.Router,
	}
}

// Send implements transport.Client. It posts the request and, for a
// JSON reply, resolves it against the router inline; for an SSE
// stream, it drains the events on the calling goroutine, resolving
// each as it arrives, and returns only once the stream closes (or
// ctx ends the request).
func (c *Client) Send(ctx context.Context, req *jsonrpc.Request) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return internalerrors.New("httpclient", "Send", internalerrors.ErrConnectionClosed, nil)
	}
	c.mu.RUnlock()

	body, err := jsonrpc.Encode(req)
	if err != nil {
		return internalerrors.New("httpclient", "Send", internalerrors.ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return internalerrors.New("httpclient", "Send", internalerrors.ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	httpReq.Header.Set(headerProtocolVer, protocolVersionValue)
	if c.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	c.mu.RLock()
	sid := c.sessionID
	lastEvt := c.lastEventID
	c.mu.RUnlock()
	if sid != "" {
		httpReq.Header.Set(headerSessionID, sid)
	}
	if lastEvt != "" {
		httpReq.Header.Set(headerLastEventID, lastEvt)
	}

	atomic.AddInt64(&c.requestsInAir, 1)
	defer atomic.AddInt64(&c.requestsInAir, -1)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return internalerrors.New("httpclient", "Send", internalerrors.ErrConnectionClosed, err)
	}
	defer resp.Body.Close()

	if newSID := resp.Header.Get(headerSessionID); newSID != "" {
		c.mu.Lock()
		c.sessionID = newSID
		c.mu.Unlock()
	}

	switch resp.StatusCode {
	case http.StatusNoContent:
		// Notification: server has nothing to correlate.
		return nil
	case http.StatusUnauthorized:
		return internalerrors.New("httpclient", "Send", internalerrors.ErrUnauthorized, fmt.Errorf("www-authenticate: %s", resp.Header.Get("WWW-Authenticate")))
	case http.StatusOK:
		// fall through to body parsing
	default:
		b, _ := io.ReadAll(resp.Body)
		return internalerrors.New("httpclient", "Send", internalerrors.ErrProtocol, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b)))
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/event-stream") {
		return c.consumeSSE(resp.Body)
	}
	return c.consumeJSON(resp.Body)
}

func (c *Client) consumeJSON(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return internalerrors.New("httpclient", "consumeJSON", internalerrors.ErrProtocol, err)
	}
	env := jsonrpc.ParseAndValidate(data)
	if env.Kind != jsonrpc.KindResponse {
		return internalerrors.New("httpclient", "consumeJSON", internalerrors.ErrProtocol, fmt.Errorf("expected a JSON-RPC response body"))
	}
	return c.router.Resolve(env.Response)
}

// consumeSSE reads "event: message\ndata: <json>\n\n" frames until the
// stream closes, tracking the last event id for Last-Event-ID resume
// and resolving each response envelope as it arrives.
func (c *Client) consumeSSE(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var dataLines []string
	flush := func() {
		if len(dataLines) == 0 {
			return
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]
		env := jsonrpc.ParseAndValidate([]byte(payload))
		switch env.Kind {
		case jsonrpc.KindResponse:
			_ = c.router.Resolve(env.Response)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "id:"):
			id := strings.TrimSpace(strings.TrimPrefix(line, "id:"))
			c.mu.Lock()
			c.lastEventID = id
			c.mu.Unlock()
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// comment/keepalive
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return internalerrors.New("httpclient", "consumeSSE", internalerrors.ErrProtocol, err)
	}
	return nil
}

// SendNotification posts a notification to /mcp. Per §4.4 the server
// replies 204 No Content with an empty body; there is nothing to
// correlate.
func (c *Client) SendNotification(ctx context.Context, n *jsonrpc.Notification) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return internalerrors.New("httpclient", "SendNotification", internalerrors.ErrConnectionClosed, nil)
	}
	sid := c.sessionID
	c.mu.RUnlock()

	body, err := jsonrpc.Encode(n)
	if err != nil {
		return internalerrors.New("httpclient", "SendNotification", internalerrors.ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return internalerrors.New("httpclient", "SendNotification", internalerrors.ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerProtocolVer, protocolVersionValue)
	if c.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if sid != "" {
		httpReq.Header.Set(headerSessionID, sid)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return internalerrors.New("httpclient", "SendNotification", internalerrors.ErrConnectionClosed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// SessionID returns the session id negotiated with the server, or ""
// if none has been established yet.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Close marks the client closed; in-flight requests are allowed to
// finish, but no new Send calls are accepted afterward. There is no
// persistent connection to tear down for plain HTTP POST, unlike
// STDIO's subprocess.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
