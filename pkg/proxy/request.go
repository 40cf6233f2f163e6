// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-core-stack/coordinator-proxy/pkg/a2a"
	"github.com/go-core-stack/coordinator-proxy/pkg/config"
)

const (
	msgMissingBody    = "Missing request body"
	msgInvalidJSON    = "Invalid JSON in request body"
	msgNotObject      = "Request body must be a JSON object"
	msgMissingMessage = "Missing 'message' in request body"
	msgMessageType    = "'message' must be a string"
)

// parseMessage extracts the non-empty message field from an inbound payload.
func parseMessage(payload []byte) (string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return "", newError(KindValidation, msgMissingBody, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return "", newError(KindValidation, msgNotObject, err)
		}
		return "", newError(KindValidation, msgInvalidJSON, err)
	}

	raw, ok := fields["message"]
	if !ok || string(raw) == "null" {
		return "", newError(KindValidation, msgMissingMessage, nil)
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return "", newError(KindValidation, msgMessageType, err)
	}
	if message == "" {
		return "", newError(KindValidation, msgMissingMessage, nil)
	}
	return message, nil
}

// outboundMessage is the body posted to the coordinator in json mode.
type outboundMessage struct {
	Message string `json:"message"`
}

// encodeOutbound frames message for the configured protocol.
func encodeOutbound(protocol config.Protocol, message string) ([]byte, error) {
	var v any = outboundMessage{Message: message}
	if protocol == config.ProtocolA2A {
		v = a2a.NewSendRequest(message)
	}
	return marshalJSON(v)
}

// marshalJSON encodes v without HTML escaping so message text reaches the
// coordinator byte-for-byte where JSON allows.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
