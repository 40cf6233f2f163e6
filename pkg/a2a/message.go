// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package a2a

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyResult is returned when the agent answers without a result.
var ErrEmptyResult = errors.New("no response from coordinator agent")

// NoTextContent stands in for a message result that carries no text parts.
const NoTextContent = "No text content in response"

// NewUserMessage wraps text in a single-part user message.
func NewUserMessage(text string) Message {
	return Message{
		Kind:      KindMessage,
		Role:      RoleUser,
		Parts:     []Part{{Kind: KindText, Text: text}},
		MessageID: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
}

// NewSendRequest builds a blocking message/send call for text.
func NewSendRequest(text string) Request {
	return Request{
		JSONRPC: jsonRPCVersion,
		ID:      uuid.NewString(),
		Method:  MethodSendMessage,
		Params: SendParams{
			Message:       NewUserMessage(text),
			Configuration: &SendConfiguration{Blocking: true},
		},
	}
}

// ExtractText decodes a message/send response body and returns the agent's
// reply text.
func ExtractText(body []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode a2a response: %w", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return "", ErrEmptyResult
	}
	return resultText(resp.Result)
}

func resultText(result json.RawMessage) (string, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(result, &probe); err != nil {
		return "", fmt.Errorf("decode a2a result: %w", err)
	}

	switch probe.Kind {
	case KindMessage:
		var msg Message
		if err := json.Unmarshal(result, &msg); err != nil {
			return "", fmt.Errorf("decode a2a message: %w", err)
		}
		texts := textParts(msg.Parts)
		if len(texts) == 0 {
			return NoTextContent, nil
		}
		return strings.Join(texts, " "), nil

	case KindTask:
		var task Task
		if err := json.Unmarshal(result, &task); err != nil {
			return "", fmt.Errorf("decode a2a task: %w", err)
		}
		for _, artifact := range task.Artifacts {
			if texts := textParts(artifact.Parts); len(texts) > 0 {
				return texts[0], nil
			}
		}
	}

	// Unknown shapes, and tasks without text artifacts, are relayed as-is.
	return string(result), nil
}

func textParts(parts []Part) []string {
	var out []string
	for _, p := range parts {
		if p.Kind == KindText {
			out = append(out, p.Text)
		}
	}
	return out
}
