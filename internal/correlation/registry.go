// Package correlation implements the request/response correlation map
// that pairs outbound JSON-RPC requests with inbound responses across
// many concurrent callers on one connection.
package correlation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"

	"github.com/google/uuid"
)

// Sender hands an encoded request envelope to the underlying transport.
// Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, req *jsonrpc.Request) error
}

// pending is one outstanding request's completion slot.
type pending struct {
	done    chan struct{}
	once    sync.Once
	result  json.RawMessage
	rpcErr  *jsonrpc.Error
	failure error
}

func (p *pending) resolve(result json.RawMessage, rpcErr *jsonrpc.Error) {
	p.once.Do(func() {
		p.result = result
		p.rpcErr = rpcErr
		close(p.done)
	})
}

func (p *pending) fail(err error) {
	p.once.Do(func() {
		p.failure = err
		close(p.done)
	})
}

// Registry mints request ids, tracks pending completion slots, and
// routes inbound responses back to the waiting caller. The happy path
// (send -> receive -> resolve) never serializes through a single mutex;
// each id gets its own entry in a sync.Map.
type Registry struct {
	sender     Sender
	defaultTTL time.Duration
	slots      sync.Map // id string -> *pending
}

// NewRegistry builds a Registry that sends through sender and applies
// defaultTTL when a caller does not specify its own timeout.
func NewRegistry(sender Sender, defaultTTL time.Duration) *Registry {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	return &Registry{sender: sender, defaultTTL: defaultTTL}
}

// Send mints a unique id, records a completion slot, hands the encoded
// request to the sender, and suspends until the slot resolves, the
// timeout fires, or ctx is cancelled. It never retries.
func (r *Registry) Send(ctx context.Context, method string, params json.RawMessage, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = r.defaultTTL
	}

	id := jsonrpc.NewStringId("c-" + uuid.NewString())
	slot := &pending{done: make(chan struct{})}
	r.slots.Store(id.String(), slot)
	defer r.slots.Delete(id.String())

	req := jsonrpc.NewRequest(id, method, params)
	if err := r.sender.Send(ctx, req); err != nil {
		return nil, internalerrors.New("correlation", "Send", internalerrors.ErrInternal, err).WithContext("id", id.String())
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-slot.done:
		if slot.failure != nil {
			return nil, slot.failure
		}
		if slot.rpcErr != nil {
			return nil, slot.rpcErr
		}
		return slot.result, nil
	case <-timer.C:
		return nil, internalerrors.New("correlation", "Send", ErrTimeout, fmt.Errorf("request %s timed out after %s", id.String(), timeout)).
			WithContext("id", id.String()).WithContext("method", method)
	case <-ctx.Done():
		return nil, internalerrors.New("correlation", "Send", ErrCancelled, ctx.Err()).WithContext("id", id.String())
	}
}

// Resolve completes the pending slot matching the response's id. If no
// slot matches, it returns ErrUnknownID; callers should log and
// continue, never treat this as fatal.
func (r *Registry) Resolve(resp *jsonrpc.Response) error {
	key := resp.ID.String()
	v, ok := r.slots.Load(key)
	if !ok {
		return internalerrors.New("correlation", "Resolve", ErrUnknownID, fmt.Errorf("no pending request for id %s", key)).WithContext("id", key)
	}
	slot := v.(*pending)

	if resp.IsError() {
		slot.resolve(nil, resp.Error)
		return nil
	}
	result, err := json.Marshal(resp.Result)
	if err != nil {
		slot.fail(internalerrors.New("correlation", "Resolve", internalerrors.ErrInternal, err))
		return nil
	}
	slot.resolve(result, nil)
	return nil
}

// CancelAll resolves every outstanding slot with a ConnectionClosed
// error and aborts further resolution. Called on connection close.
func (r *Registry) CancelAll(reason string) {
	r.slots.Range(func(key, value any) bool {
		slot := value.(*pending)
		slot.fail(internalerrors.New("correlation", "CancelAll", ErrConnectionClosed, fmt.Errorf("%s", reason)))
		r.slots.Delete(key)
		return true
	})
}

// Pending reports the number of outstanding requests, for tests and
// diagnostics.
func (r *Registry) Pending() int {
	n := 0
	r.slots.Range(func(_, _ any) bool { n++; return true })
	return n
}
