// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package proxy relays a single user message from an HTTP gateway to a remote
// coordinator agent. Each invocation validates the inbound payload, resolves
// the coordinator URL and bearer credential, issues exactly one bounded
// outbound call, and maps the outcome to a uniform JSON response. There are
// no retries: a failed call is terminal for that invocation.
package proxy
