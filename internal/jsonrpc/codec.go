package jsonrpc

import (
	"encoding/json"
	"fmt"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
)

// Kind identifies which envelope variant a parsed message turned out to be.
type Kind int

const (
	// KindInvalid marks a message that failed classification or validation.
	KindInvalid Kind = iota
	KindRequest
	KindResponse
	KindNotification
)

// Envelope is the result of classifying and validating one JSON-RPC message.
// Exactly one of Request, Response, Notification is non-nil when Kind is
// the matching variant; ParseErr/InvalidErr carry the recoverable error
// when Kind is KindInvalid.
type Envelope struct {
	Kind         Kind
	Request      *Request
	Response     *Response
	Notification *Notification

	// ParseErr is set when the body was empty, not valid JSON, or valid
	// JSON whose top level is not an object (batch arrays excepted).
	ParseErr error

	// InvalidErr is set when the body was valid JSON but violated an
	// envelope invariant. EchoedID carries whatever id could be
	// recovered from the malformed body, or the null Id if none could.
	InvalidErr error
	EchoedID   Id
}

// wireShape is the permissive superset used to sniff field presence
// before committing to one of the three envelope types.
type wireShape struct {
	JSONRPC json.RawMessage `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  json.RawMessage `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

func (w wireShape) has(field json.RawMessage) bool { return field != nil }

func trimLeadingSpace(raw []byte) []byte {
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return raw[i:]
		}
	}
	return raw[i:]
}

// ParseAndValidate classifies raw bytes into a Request, Response, or
// Notification, enforcing every invariant in DATA MODEL §3. On any
// structural failure the returned Envelope has Kind == KindInvalid and
// carries a classified error plus, where recoverable, the echoed id.
func ParseAndValidate(raw []byte) Envelope {
	trimmed := trimLeadingSpace(raw)
	if len(trimmed) == 0 {
		return Envelope{Kind: KindInvalid, ParseErr: internalerrors.New("jsonrpc", "ParseAndValidate", internalerrors.ErrBadRequest, fmt.Errorf("empty body"))}
	}

	// Batch arrays are a distinct, explicitly out-of-scope shape: reject
	// with InvalidRequest rather than the generic non-object ParseError.
	if trimmed[0] == '[' {
		return invalid("batch requests are not supported", Id{})
	}

	var shape wireShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Envelope{Kind: KindInvalid, ParseErr: internalerrors.New("jsonrpc", "ParseAndValidate", internalerrors.ErrBadRequest, err)}
	}

	echoed := echoedID(shape.ID)

	if !shape.has(shape.JSONRPC) {
		return invalid("missing jsonrpc version", echoed)
	}
	var version string
	if err := json.Unmarshal(shape.JSONRPC, &version); err != nil || version != Version {
		return invalid("jsonrpc must equal \"2.0\"", echoed)
	}

	hasID := shape.has(shape.ID)
	hasMethod := shape.has(shape.Method)
	hasResult := shape.has(shape.Result)
	hasError := shape.has(shape.Error)

	switch {
	case hasID && hasMethod:
		return parseRequest(raw, echoed)
	case hasID && (hasResult || hasError) && !hasMethod:
		if hasResult && hasError {
			return invalid("response must not have both result and error", echoed)
		}
		return parseResponse(raw, echoed)
	case hasMethod && !hasID:
		return parseNotification(raw)
	default:
		return invalid("envelope matches neither request, response, nor notification shape", echoed)
	}
}

func parseRequest(raw []byte, echoed Id) Envelope {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return invalid(fmt.Sprintf("malformed request: %v", err), echoed)
	}
	if req.Method == "" {
		return invalid("method must be a non-empty string", echoed)
	}
	if !req.ID.IsSet() || req.ID.IsNull() {
		return invalid("request id must be a non-null string or integer", echoed)
	}
	return Envelope{Kind: KindRequest, Request: &req}
}

func parseResponse(raw []byte, echoed Id) Envelope {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return invalid(fmt.Sprintf("malformed response: %v", err), echoed)
	}
	if resp.Result != nil && resp.Error != nil {
		return invalid("response must not have both result and error", echoed)
	}
	if resp.Result == nil && resp.Error == nil {
		return invalid("response must have exactly one of result or error", echoed)
	}
	return Envelope{Kind: KindResponse, Response: &resp}
}

func parseNotification(raw []byte) Envelope {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return invalid(fmt.Sprintf("malformed notification: %v", err), Id{})
	}
	if n.Method == "" {
		return invalid("method must be a non-empty string", Id{})
	}
	return Envelope{Kind: KindNotification, Notification: &n}
}

func invalid(reason string, echoed Id) Envelope {
	return Envelope{
		Kind:       KindInvalid,
		InvalidErr: internalerrors.New("jsonrpc", "ParseAndValidate", internalerrors.ErrBadRequest, fmt.Errorf("%s", reason)),
		EchoedID:   echoed,
	}
}

// echoedID best-effort recovers an id from a raw id field for error
// reporting; an id that cannot be interpreted yields the null Id.
func echoedID(raw json.RawMessage) Id {
	if raw == nil {
		return Id{}
	}
	var id Id
	if err := json.Unmarshal(raw, &id); err != nil {
		return NullId()
	}
	return id
}

// Encode serializes an envelope value (Request, Response, or
// Notification) into a compact JSON object with jsonrpc:"2.0" first.
// It never appends a trailing newline; framing is the transport's job.
func Encode(envelope any) ([]byte, error) {
	switch v := envelope.(type) {
	case *Request:
		return json.Marshal(v)
	case *Response:
		return json.Marshal(v)
	case *Notification:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("jsonrpc: cannot encode %T", envelope)
	}
}
