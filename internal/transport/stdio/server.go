package stdio

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/jsonrpc"
	"github.com/mcpkit/mcpcore/internal/session"
)

// Serve runs the server side of the STDIO transport: read line-framed
// JSON-RPC from r, run each line through engine, and write any
// resulting response line to w. STDIO has no HTTP status codes, so a
// KindUnauthenticated result is rendered as a -32001 JSON-RPC error
// rather than surfaced as a transport-level signal (§4.3.1).
//
// Serve blocks until r is exhausted (the peer closed its write side)
// and returns nil on a clean EOF. ctx is checked after each line is
// read, so a cancellation while Serve waits for input takes effect
// when the next line arrives; Serve then returns ctx.Err().
func Serve(ctx context.Context, r io.Reader, w io.Writer, engine *session.Engine, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	scanner := bufio.NewScanner(r)
	// Default bufio.Scanner token limit (64KiB) is too small for
	// realistic tool-call payloads; grow it generously.
	const maxLine = 16 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	out := bufio.NewWriter(w)
	defer out.Flush()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		// Copy out of the scanner's reused buffer before handing it to
		// the engine, which may retain slices of raw across async work.
		msg := append([]byte(nil), line...)

		result := engine.Handle(ctx, auth.Metadata{}, msg)
		switch result.Kind {
		case session.KindNoContent:
			continue
		case session.KindUnauthenticated:
			resp := jsonrpc.NewErrorResponse(jsonrpc.NullId(), jsonrpc.NewError(jsonrpc.CodeUnauthorized, "unauthenticated", nil))
			if err := writeResponse(out, resp, logger); err != nil {
				return err
			}
		case session.KindResponse:
			if _, err := out.Write(result.Response); err != nil {
				return err
			}
			if err := out.WriteByte('\n'); err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeResponse(out *bufio.Writer, resp *jsonrpc.Response, logger *slog.Logger) error {
	b, err := jsonrpc.Encode(resp)
	if err != nil {
		logger.Error("stdio server: failed to encode response", "error", err)
		return err
	}
	if _, err := out.Write(b); err != nil {
		return err
	}
	if err := out.WriteByte('\n'); err != nil {
		return err
	}
	return out.Flush()
}

func bytesTrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
