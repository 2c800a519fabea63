// Package stdio implements the STDIO transport adapter (§4.3.1): a
// client side that spawns a subprocess speaking line-delimited
// JSON-RPC on its stdin/stdout, and a server side that runs the same
// framing over a process's own stdin/stdout against a session.Engine.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/mcpkit/mcpcore/internal/correlation"
	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
)

// ResponseRouter is satisfied by *correlation.Registry; kept as an
// interface so tests can substitute a fake without spinning up a real
// registry.
type ResponseRouter interface {
	Resolve(resp *jsonrpc.Response) error
}

// NotificationHandler receives server-to-client notifications observed
// on the subprocess's stdout (e.g. notifications/resources/updated).
type NotificationHandler func(n *jsonrpc.Notification)

// Client spawns a subprocess and implements transport.Client over its
// piped stdin/stdout. Stderr is drained on its own goroutine so
// diagnostic output from the child never corrupts line framing on
// stdout (§4.3.1's core constraint).
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	router  ResponseRouter
	onNotif NotificationHandler
	logger  *slog.Logger

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool

	readDone chan struct{}
	// GracePeriod bounds how long Close waits for the child to exit
	// after stdin is closed before it is killed outright.
	GracePeriod time.Duration
}

// Options configures Spawn.
type Options struct {
	// Command and Args name the subprocess to run.
	Command string
	Args    []string

	// Router resolves inbound response envelopes against the caller's
	// correlation registry. Required.
	Router ResponseRouter

	// OnNotification, if set, is invoked for every inbound envelope
	// that has a method and no id (a server-to-client notification).
	OnNotification NotificationHandler

	// StderrSink receives the child's stderr, line by line, for
	// forwarding to a log sink. If nil, stderr is drained and discarded.
	StderrSink func(line string)

	Logger *slog.Logger

	// GracePeriod bounds graceful shutdown before Close kills the child.
	GracePeriod time.Duration
}

// Spawn starts the subprocess and returns a ready-to-use Client.
func Spawn(opts Options) (*Client, error) {
	if opts.Router == nil {
		return nil, fmt.Errorf("stdio: Router is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	grace := opts.GracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}

	cmd := exec.Command(opts.Command, opts.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, internalerrors.New("stdio", "Spawn", internalerrors.ErrInternal, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, internalerrors.New("stdio", "Spawn", internalerrors.ErrInternal, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, internalerrors.New("stdio", "Spawn", internalerrors.ErrInternal, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, internalerrors.New("stdio", "Spawn", internalerrors.ErrInternal, err)
	}

	c := &Client{
		cmd:         cmd,
		stdin:       stdin,
		stdout:      bufio.NewReader(stdout),
		router:      opts.Router,
		onNotif:     opts.OnNotification,
		logger:      logger,
		readDone:    make(chan struct{}),
		GracePeriod: grace,
	}

	go c.drainStderr(stderr, opts.StderrSink)
	go c.readLoop()

	return c, nil
}

// Send implements transport.Client: write one line-framed request to
// the child's stdin. Concurrent Sends are serialized so one request's
// bytes are never interleaved with another's on the wire.
func (c *Client) Send(ctx context.Context, req *jsonrpc.Request) error {
	data, err := jsonrpc.Encode(req)
	if err != nil {
		return internalerrors.New("stdio", "Send", internalerrors.ErrInternal, err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.stdin.Write(data); err != nil {
		return internalerrors.New("stdio", "Send", internalerrors.ErrConnectionClosed, err)
	}
	return nil
}

// SendNotification writes a fire-and-forget line to the child's stdin;
// no response is expected or awaited.
func (c *Client) SendNotification(ctx context.Context, n *jsonrpc.Notification) error {
	data, err := jsonrpc.Encode(n)
	if err != nil {
		return internalerrors.New("stdio", "SendNotification", internalerrors.ErrInternal, err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.stdin.Write(data); err != nil {
		return internalerrors.New("stdio", "SendNotification", internalerrors.ErrConnectionClosed, err)
	}
	return nil
}

// readLoop reads line-framed envelopes from the child's stdout for the
// life of the process, routing responses to the correlation registry
// and notifications to onNotif. A single malformed line is logged and
// skipped rather than treated as fatal; a broken pipe ends the loop.
func (c *Client) readLoop() {
	defer close(c.readDone)
	for {
		line, err := c.stdout.ReadBytes('\n')
		if len(line) > 0 {
			c.handleLine(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Warn("stdio client read error", "error", err)
			}
			return
		}
	}
}

func (c *Client) handleLine(line []byte) {
	env := jsonrpc.ParseAndValidate(line)
	switch env.Kind {
	case jsonrpc.KindResponse:
		if err := c.router.Resolve(env.Response); err != nil {
			c.logger.Debug("stdio client: response for unknown id", "error", err)
		}
	case jsonrpc.KindNotification:
		if c.onNotif != nil {
			c.onNotif(env.Notification)
		}
	default:
		c.logger.Warn("stdio client: malformed line from server", "error", env.InvalidErr)
	}
}

func (c *Client) drainStderr(r io.Reader, sink func(line string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if sink != nil {
			sink(scanner.Text())
		}
	}
}

// Close closes stdin (signalling shutdown to a well-behaved server),
// waits up to GracePeriod for the child to exit, and kills it on
// expiry. Idempotent.
func (c *Client) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return nil
	}
	c.closed = true
	c.closeMu.Unlock()

	_ = c.stdin.Close()

	waitDone := make(chan error, 1)
	go func() { waitDone <- c.cmd.Wait() }()

	select {
	case <-waitDone:
	case <-time.After(c.GracePeriod):
		_ = c.cmd.Process.Kill()
		<-waitDone
	}
	return nil
}

var _ correlation.Sender = (*Client)(nil)
