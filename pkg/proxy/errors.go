// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"fmt"
	"net/http"

	"github.com/go-core-stack/coordinator-proxy/pkg/metrics"
)

// Kind classifies why an invocation failed.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindConfiguration Kind = "ConfigurationError"
	KindTimeout       Kind = "TimeoutError"
	KindUpstream      Kind = "UpstreamError"
	KindTransport     Kind = "TransportError"
)

// Status returns the HTTP status reported to the caller for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindUpstream, KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) outcome() string {
	switch k {
	case KindValidation:
		return metrics.OutcomeValidation
	case KindConfiguration:
		return metrics.OutcomeConfiguration
	case KindTimeout:
		return metrics.OutcomeTimeout
	case KindUpstream:
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeTransport
	}
}

// Error is the single failure type produced by Forward. Message is safe to
// return to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus is set for KindUpstream.
	UpstreamStatus int
	Err            error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As checks.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the HTTP status emitted downstream.
func (e *Error) Status() int {
	return e.Kind.Status()
}
