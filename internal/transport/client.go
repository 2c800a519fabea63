package transport

import (
	"context"

	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

// Client is the transport contract every client-side adapter
// implements (§4.3): hand an encoded request to the wire and report
// send failures immediately. It is deliberately narrow — matching rtt
// pairing, retries, and timeouts are the correlation registry's job
// (internal/correlation.Sender), not the transport's. Close is
// idempotent; after it returns, every subsequent Send fails.
type Client interface {
	Send(ctx context.Context, req *jsonrpc.Request) error

	// SendNotification writes a fire-and-forget envelope: no response is
	// expected, and the call returns as soon as the bytes are handed to
	// the wire (not correlated through internal/correlation).
	SendNotification(ctx context.Context, n *jsonrpc.Notification) error

	Close() error
}
