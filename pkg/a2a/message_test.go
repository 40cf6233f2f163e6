// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package a2a

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewSendRequest(t *testing.T) {
	req := NewSendRequest("héllo \"world\" <&>")

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Request
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.JSONRPC != "2.0" || decoded.Method != MethodSendMessage {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
	msg := decoded.Params.Message
	if msg.Role != RoleUser || msg.Kind != KindMessage {
		t.Fatalf("unexpected message header: %+v", msg)
	}
	if len(msg.Parts) != 1 || msg.Parts[0].Text != "héllo \"world\" <&>" {
		t.Fatalf("text not preserved: %+v", msg.Parts)
	}
	if len(msg.MessageID) != 32 || strings.Contains(msg.MessageID, "-") {
		t.Fatalf("expected hex message id, got %q", msg.MessageID)
	}
	if decoded.Params.Configuration == nil || !decoded.Params.Configuration.Blocking {
		t.Fatal("expected blocking configuration")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "message joins text parts",
			body: `{"jsonrpc":"2.0","id":"1","result":{"kind":"message","role":"agent","messageId":"m","parts":[{"kind":"text","text":"hello"},{"kind":"data"},{"kind":"text","text":"there"}]}}`,
			want: "hello there",
		},
		{
			name: "message without text",
			body: `{"jsonrpc":"2.0","id":"1","result":{"kind":"message","role":"agent","messageId":"m","parts":[]}}`,
			want: NoTextContent,
		},
		{
			name: "task artifact text",
			body: `{"jsonrpc":"2.0","id":"1","result":{"kind":"task","id":"t","status":{"state":"completed"},"artifacts":[{"parts":[{"kind":"file"}]},{"parts":[{"kind":"text","text":"42"}]}]}}`,
			want: "42",
		},
		{
			name: "task without artifacts relayed raw",
			body: `{"jsonrpc":"2.0","id":"1","result":{"kind":"task","id":"t","status":{"state":"working"}}}`,
			want: `{"kind":"task","id":"t","status":{"state":"working"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractText([]byte(tc.body))
			if err != nil {
				t.Fatalf("ExtractText: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractTextErrors(t *testing.T) {
	_, err := ExtractText([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32601,"message":"method not found"}}`))
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Fatalf("expected rpc error, got %v", err)
	}

	if _, err := ExtractText([]byte(`{"jsonrpc":"2.0","id":"1"}`)); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if _, err := ExtractText([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}
