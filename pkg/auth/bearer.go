// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderAuthorization = "Authorization"
	// DefaultSessionHeader carries the runtime session id expected by AgentCore.
	DefaultSessionHeader = "X-Amzn-Bedrock-AgentCore-Runtime-Session-Id"
)

// Bearer injects a bearer credential and a per-call session id into
// outbound requests.
type Bearer struct {
	Token         string
	SessionHeader string
	NewSessionID  func() string
}

// NewBearer constructs a Bearer that mints random UUID session ids.
func NewBearer(token, sessionHeader string) *Bearer {
	if sessionHeader == "" {
		sessionHeader = DefaultSessionHeader
	}
	return &Bearer{
		Token:         token,
		SessionHeader: sessionHeader,
		NewSessionID:  uuid.NewString,
	}
}

// Attach mutates the request with the Authorization header and, unless the
// caller already supplied one, a fresh session id. It returns the session id
// in effect so callers can correlate logs.
func (b *Bearer) Attach(req *http.Request) (string, error) {
	if b.Token == "" {
		return "", errors.New("bearer token must be set")
	}

	req.Header.Set(HeaderAuthorization, "Bearer "+b.Token)

	session := req.Header.Get(b.SessionHeader)
	if session == "" {
		session = b.NewSessionID()
		req.Header.Set(b.SessionHeader, session)
	}
	return session, nil
}

// Redact masks a credential for logging, keeping only a short suffix when the
// token is long enough that the suffix reveals nothing useful.
func Redact(token string) string {
	switch {
	case token == "":
		return "<unset>"
	case len(token) < 12:
		return "****"
	default:
		return "****" + token[len(token)-4:]
	}
}
