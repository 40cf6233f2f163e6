// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package a2a holds the small subset of the Agent-to-Agent wire format the
// coordinator proxy speaks: a non-streaming JSON-RPC message/send call, the
// Message and Task result shapes, and agent card discovery against an
// AgentCore runtime.
package a2a
