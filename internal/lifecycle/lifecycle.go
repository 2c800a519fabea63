// Package lifecycle implements the MCP three-phase connection state
// machine (Initialization -> Operation -> Shutdown) and capability
// negotiation gating which methods are admissible in each phase.
package lifecycle

import (
	"fmt"
	"strings"
	"sync"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
)

// Phase is one state of an MCP connection's lifecycle. Transitions are
// one-way: Initialization -> Operation -> Shutdown.
type Phase int

const (
	// Initialization is the entry phase; only initialize and ping are admitted.
	Initialization Phase = iota
	// Operation is entered once initialize succeeds and notifications/initialized arrives.
	Operation
	// Shutdown is terminal; no methods are admitted.
	Shutdown
)

func (p Phase) String() string {
	switch p {
	case Initialization:
		return "Initialization"
	case Operation:
		return "Operation"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// PeerInfo identifies a remote party, learned during initialize.
type PeerInfo struct {
	Name    string
	Version string
}

// Connection tracks one MCP session's lifecycle phase and negotiated
// capability set. All state transitions are serialized under a mutex;
// reads after a transition observe the new state.
type Connection struct {
	mu sync.RWMutex

	phase Phase

	initializeSucceeded bool
	initializedReceived bool

	negotiated Capabilities
	peer       PeerInfo
	sessionID  string
}

// NewConnection builds a Connection in the Initialization phase.
func NewConnection() *Connection {
	return &Connection{phase: Initialization}
}

// Phase returns the current lifecycle phase.
func (c *Connection) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Capabilities returns the negotiated capability set. It is only
// meaningful once Phase() == Operation.
func (c *Connection) Capabilities() Capabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.negotiated
}

// PeerInfo returns the remote party's identity learned at initialize.
func (c *Connection) PeerInfo() PeerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peer
}

// SessionID returns the opaque session identifier, if any (HTTP transports only).
func (c *Connection) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SetSessionID records the transport-level session identifier.
func (c *Connection) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// CompleteInitialize records a successful initialize exchange: the
// negotiated protocol version matched and the capability intersection
// was computed. It does not by itself transition to Operation; that
// also requires ConfirmInitialized. A second call after the first
// succeeded returns an "already initialized" error.
func (c *Connection) CompleteInitialize(peer PeerInfo, clientCaps, serverCaps Capabilities) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != Initialization {
		return internalerrors.New("lifecycle", "CompleteInitialize", internalerrors.ErrBadRequest, fmt.Errorf("already initialized")).
			WithContext("phase", c.phase.String())
	}
	if c.initializeSucceeded {
		return internalerrors.New("lifecycle", "CompleteInitialize", internalerrors.ErrBadRequest, fmt.Errorf("already initialized"))
	}

	c.peer = peer
	c.negotiated = Intersect(clientCaps, serverCaps)
	c.initializeSucceeded = true
	return nil
}

// ConfirmInitialized records receipt of notifications/initialized and,
// together with a prior CompleteInitialize, completes the transition
// to Operation.
func (c *Connection) ConfirmInitialized() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initializeSucceeded {
		return internalerrors.New("lifecycle", "ConfirmInitialized", internalerrors.ErrBadRequest, fmt.Errorf("initialize has not completed"))
	}
	c.initializedReceived = true
	c.phase = Operation
	return nil
}

// ShutdownNow transitions to the terminal Shutdown phase. Idempotent.
func (c *Connection) ShutdownNow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = Shutdown
}

// Admit reports whether method m is admissible in the connection's
// current phase given its negotiated capabilities, and classifies the
// rejection reason when it is not.
func (c *Connection) Admit(method string) error {
	c.mu.RLock()
	phase := c.phase
	caps := c.negotiated
	c.mu.RUnlock()

	switch phase {
	case Initialization:
		if method == "initialize" || method == "ping" {
			return nil
		}
		return internalerrors.New("lifecycle", "Admit", internalerrors.ErrBadRequest, fmt.Errorf("not initialized")).
			WithContext("method", method)
	case Operation:
		if capabilityFor(method) == "" {
			// Methods with no capability gate (ping, initialize-adjacent
			// notifications) are always admitted in Operation.
			return nil
		}
		if caps.Has(capabilityFor(method)) {
			return nil
		}
		return internalerrors.New("lifecycle", "Admit", ErrCapabilityNotNegotiated, fmt.Errorf("capability %q not negotiated for method %q", capabilityFor(method), method)).
			WithContext("method", method)
	case Shutdown:
		return internalerrors.New("lifecycle", "Admit", internalerrors.ErrConnectionClosed, fmt.Errorf("connection is shutting down")).
			WithContext("method", method)
	default:
		return internalerrors.New("lifecycle", "Admit", internalerrors.ErrInternal, fmt.Errorf("unknown phase"))
	}
}

// capabilityFor maps a method name to the capability name that gates
// it, or "" if the method is not capability-gated.
func capabilityFor(method string) string {
	switch {
	case strings.HasPrefix(method, "resources/"):
		return "resources"
	case strings.HasPrefix(method, "tools/"):
		return "tools"
	case strings.HasPrefix(method, "prompts/"):
		return "prompts"
	case strings.HasPrefix(method, "logging/"):
		return "logging"
	default:
		return ""
	}
}
