// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package a2a

import (
	"encoding/json"
	"fmt"
)

const (
	KindMessage = "message"
	KindTask    = "task"
	KindText    = "text"

	RoleUser  = "user"
	RoleAgent = "agent"

	MethodSendMessage = "message/send"
	jsonRPCVersion    = "2.0"
)

// Part is a single content fragment. Only text parts are interpreted.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Message is an A2A message exchanged between user and agent.
type Message struct {
	Kind      string `json:"kind"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	MessageID string `json:"messageId"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
}

// Artifact is an output attached to a task.
type Artifact struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

// TaskStatus describes where a task is in its lifecycle.
type TaskStatus struct {
	State   string   `json:"state"`
	Message *Message `json:"message,omitempty"`
}

// Task is returned instead of a Message when the agent tracks work as a task.
type Task struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// SendConfiguration tunes a message/send call.
type SendConfiguration struct {
	Blocking            bool     `json:"blocking"`
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
}

// SendParams is the params object of a message/send call.
type SendParams struct {
	Message       Message            `json:"message"`
	Configuration *SendConfiguration `json:"configuration,omitempty"`
}

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Method  string     `json:"method"`
	Params  SendParams `json:"params"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("a2a rpc error %d: %s", e.Code, e.Message)
}

// Response is a JSON-RPC 2.0 response envelope. Result stays raw until its
// kind is known.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// AgentSkill advertises one capability of an agent.
type AgentSkill struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AgentCapabilities lists optional protocol features.
type AgentCapabilities struct {
	Streaming         bool `json:"streaming,omitempty" yaml:"streaming,omitempty"`
	PushNotifications bool `json:"pushNotifications,omitempty" yaml:"push_notifications,omitempty"`
}

// AgentCard is the discovery document served under /.well-known.
type AgentCard struct {
	Name               string            `json:"name" yaml:"name"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	URL                string            `json:"url" yaml:"url"`
	Version            string            `json:"version,omitempty" yaml:"version,omitempty"`
	ProtocolVersion    string            `json:"protocolVersion,omitempty" yaml:"protocol_version,omitempty"`
	PreferredTransport string            `json:"preferredTransport,omitempty" yaml:"preferred_transport,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities" yaml:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitempty" yaml:"default_input_modes,omitempty"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitempty" yaml:"default_output_modes,omitempty"`
	Skills             []AgentSkill      `json:"skills,omitempty" yaml:"skills,omitempty"`
}
