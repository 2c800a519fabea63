package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestParseAndValidate_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want Kind
	}{
		{"request with string id", `{"jsonrpc":"2.0","id":"r-1","method":"tools/list"}`, KindRequest},
		{"request with int id", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, KindRequest},
		{"response with result", `{"jsonrpc":"2.0","id":1,"result":{}}`, KindResponse},
		{"response with error", `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"not found"}}`, KindResponse},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, KindNotification},
		{"response with both result and error", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"x"}}`, KindInvalid},
		{"fractional id", `{"jsonrpc":"2.0","id":1.5,"method":"ping"}`, KindInvalid},
		{"boolean id", `{"jsonrpc":"2.0","id":true,"method":"ping"}`, KindInvalid},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, KindInvalid},
		{"missing version", `{"id":1,"method":"ping"}`, KindInvalid},
		{"empty method", `{"jsonrpc":"2.0","id":1,"method":""}`, KindInvalid},
		{"neither shape", `{"jsonrpc":"2.0"}`, KindInvalid},
		{"batch array", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, KindInvalid},
		{"empty body", ``, KindInvalid},
		{"non-object top level", `"just a string"`, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseAndValidate([]byte(tt.body))
			if got.Kind != tt.want {
				t.Fatalf("ParseAndValidate(%q).Kind = %v, want %v", tt.body, got.Kind, tt.want)
			}
		})
	}
}

func TestParseAndValidate_ParseErrorVsInvalidRequest(t *testing.T) {
	t.Parallel()

	empty := ParseAndValidate([]byte(``))
	if empty.ParseErr == nil {
		t.Fatal("expected ParseErr for empty body")
	}

	nonObject := ParseAndValidate([]byte(`42`))
	if nonObject.ParseErr == nil {
		t.Fatal("expected ParseErr for non-object top level")
	}

	batch := ParseAndValidate([]byte(`[]`))
	if batch.InvalidErr == nil {
		t.Fatal("expected InvalidErr (not ParseErr) for a batch array")
	}
}

func TestParseAndValidate_EchoesRecoverableID(t *testing.T) {
	t.Parallel()

	env := ParseAndValidate([]byte(`{"jsonrpc":"2.0","id":"r-1","result":{},"error":{"code":1,"message":"x"}}`))
	if env.Kind != KindInvalid {
		t.Fatalf("Kind = %v, want KindInvalid", env.Kind)
	}
	if !env.EchoedID.Equal(NewStringId("r-1")) {
		t.Fatalf("EchoedID = %v, want r-1", env.EchoedID)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	req := NewRequest(NewIntId(7), "tools/list", json.RawMessage(`{"cursor":null}`))
	data, err := Encode(req)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	env := ParseAndValidate(data)
	if env.Kind != KindRequest {
		t.Fatalf("round-tripped Kind = %v, want KindRequest", env.Kind)
	}
	if env.Request.Method != "tools/list" {
		t.Fatalf("round-tripped Method = %q, want tools/list", env.Request.Method)
	}
	if !env.Request.ID.Equal(NewIntId(7)) {
		t.Fatalf("round-tripped ID = %v, want 7", env.Request.ID)
	}
}

func TestId_FractionalRejected(t *testing.T) {
	t.Parallel()

	var id Id
	err := json.Unmarshal([]byte(`1.5`), &id)
	if err == nil {
		t.Fatal("expected error unmarshaling fractional id")
	}
}
