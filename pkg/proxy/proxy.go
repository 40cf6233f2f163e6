// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/coordinator-proxy/pkg/a2a"
	"github.com/go-core-stack/coordinator-proxy/pkg/auth"
	"github.com/go-core-stack/coordinator-proxy/pkg/config"
	"github.com/go-core-stack/coordinator-proxy/pkg/metrics"
)

const (
	// maxRequestBody caps inbound payloads read from the gateway.
	maxRequestBody = 1 << 20
	// maxResponseBody caps what is buffered from the coordinator.
	maxResponseBody = 16 << 20
	// maxErrorSnippet bounds the upstream body echoed in error descriptions.
	maxErrorSnippet = 512
)

const (
	msgURLNotConfigured   = "Coordinator agent URL not configured"
	msgURLInvalid         = "Coordinator agent URL is invalid"
	msgTokenNotConfigured = "Authentication token not configured"
	msgTimeout            = "Request timeout - coordinator agent took too long to respond"
	msgCanceled           = "Request canceled before coordinator agent responded"
	msgTransport          = "Failed to communicate with coordinator agent"
	msgBadAgentResponse   = "Invalid response from coordinator agent"
	msgResponseTooLarge   = "Response from coordinator agent too large"
)

// TargetLoader resolves the coordinator destination for one invocation.
type TargetLoader func() (config.Target, error)

// Result is the successful outcome of one relay.
type Result struct {
	// AgentResponse is the coordinator's reply, treated as opaque text.
	AgentResponse string
	// SessionID is the runtime session the call was made under.
	SessionID string
}

// Proxy relays gateway messages to the coordinator agent.
type Proxy struct {
	// cfg keeps runtime knobs such as the request bound and wire protocol.
	cfg config.Config
	// client performs outbound HTTP requests with tuned transport settings.
	client *http.Client
	// loadTarget resolves the URL and bearer token at invocation time.
	loadTarget TargetLoader
	// metrics records outcomes; nil disables instrumentation.
	metrics *metrics.Metrics
	// logger emits structured logs for observability.
	logger zerolog.Logger
}

// Option customises a Proxy at construction.
type Option func(*Proxy)

// WithTargetLoader replaces the environment-backed target resolution.
func WithTargetLoader(fn TargetLoader) Option {
	return func(p *Proxy) { p.loadTarget = fn }
}

// WithHTTPClient replaces the outbound client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Proxy) { p.client = c }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Proxy) { p.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Proxy) { p.logger = l }
}

// New constructs a Proxy backed by an http.Client configured with sensible
// connection pooling defaults and the provided runtime configuration.
func New(cfg config.Config, opts ...Option) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid proxy config: %w", err)
	}

	// Build a transport that honours system proxies and keeps connections warm.
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, // nolint:gosec -- opt-in for development scenarios
		},
	}

	p := &Proxy{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		loadTarget: func() (config.Target, error) {
			return config.LoadTarget(os.LookupEnv)
		},
		logger: log.With().Str("component", "proxy").Logger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Forward validates payload, relays its message to the coordinator and
// returns the reply. Every failure is a *Error.
func (p *Proxy) Forward(ctx context.Context, payload []byte) (Result, error) {
	return p.invoke(ctx, payload, nil)
}

// invoke runs one relay and records its outcome.
func (p *Proxy) invoke(ctx context.Context, payload []byte, inbound *http.Request) (Result, error) {
	res, err := p.forward(ctx, payload, inbound)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			p.metrics.Observe(perr.Kind.outcome())
		}
		return Result{}, err
	}
	p.metrics.Observe(metrics.OutcomeSuccess)
	return res, nil
}

func (p *Proxy) forward(ctx context.Context, payload []byte, inbound *http.Request) (Result, error) {
	message, err := parseMessage(payload)
	if err != nil {
		return Result{}, err
	}

	target, err := p.loadTarget()
	if err != nil {
		return Result{}, configurationError(err)
	}

	body, err := encodeOutbound(p.cfg.Protocol, message)
	if err != nil {
		return Result{}, newError(KindValidation, msgInvalidJSON, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL.String(), bytes.NewReader(body))
	if err != nil {
		return Result{}, newError(KindConfiguration, msgURLInvalid, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if inbound != nil {
		augmentForwardHeaders(req.Header, inbound)
		if session := inbound.Header.Get(p.cfg.SessionHeader); session != "" {
			req.Header.Set(p.cfg.SessionHeader, session)
		}
	}

	bearer := auth.NewBearer(target.BearerToken, p.cfg.SessionHeader)
	session, err := bearer.Attach(req)
	if err != nil {
		return Result{}, newError(KindConfiguration, msgTokenNotConfigured, err)
	}

	event := p.logger.With().
		Str("session_id", session).
		Str("upstream_host", target.URL.Host).
		Str("protocol", string(p.cfg.Protocol)).
		Logger()
	event.Debug().Int("message_len", len(message)).Msg("sending message to coordinator agent")

	start := time.Now()
	resp, err := p.client.Do(req)
	p.metrics.ObserveUpstream(time.Since(start))
	if err != nil {
		return Result{}, classifyTransportError(ctx, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			event.Error().
				Err(closeErr).
				Msg("close upstream response body failed")
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return Result{}, classifyTransportError(ctx, err)
	}
	if len(respBody) > maxResponseBody {
		event.Warn().
			Int("status", resp.StatusCode).
			Int("limit_bytes", maxResponseBody).
			Msg("upstream response exceeds limit")
		return Result{}, newError(KindUpstream, msgResponseTooLarge, nil)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		event.Warn().
			Int("status", resp.StatusCode).
			Bytes("upstream_body", truncate(respBody, maxErrorSnippet)).
			Msg("upstream returned error")
		return Result{}, upstreamStatusError(resp.StatusCode, respBody)
	}

	text := string(respBody)
	if p.cfg.Protocol == config.ProtocolA2A {
		text, err = a2a.ExtractText(respBody)
		if err != nil {
			return Result{}, agentReplyError(err)
		}
	}

	event.Debug().
		Int("status", resp.StatusCode).
		Dur("upstream_duration", time.Since(start)).
		Msg("coordinator agent responded")

	return Result{AgentResponse: text, SessionID: session}, nil
}

// configurationError maps a target resolution failure to a caller-safe error.
func configurationError(err error) *Error {
	msg := msgURLNotConfigured
	var targetErr *config.TargetError
	if errors.As(err, &targetErr) {
		switch {
		case targetErr.Var == config.EnvBearerToken:
			msg = msgTokenNotConfigured
		case strings.Contains(targetErr.Reason, "absolute"):
			msg = msgURLInvalid
		}
	}
	return newError(KindConfiguration, msg, err)
}

// classifyTransportError separates deadline expiry from other network faults.
func classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(KindTimeout, msgTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, msgTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return newError(KindTransport, msgCanceled, err)
	}
	return newError(KindTransport, msgTransport, err)
}

func upstreamStatusError(status int, body []byte) *Error {
	msg := fmt.Sprintf("HTTP error: %d", status)
	if snippet := strings.TrimSpace(string(truncate(body, maxErrorSnippet))); snippet != "" {
		msg += ": " + snippet
	}
	e := newError(KindUpstream, msg, nil)
	e.UpstreamStatus = status
	return e
}

func agentReplyError(err error) *Error {
	var rpcErr *a2a.RPCError
	switch {
	case errors.As(err, &rpcErr):
		return newError(KindUpstream, fmt.Sprintf("Agent error %d: %s", rpcErr.Code, rpcErr.Message), err)
	case errors.Is(err, a2a.ErrEmptyResult):
		return newError(KindUpstream, "No response from coordinator agent", err)
	default:
		return newError(KindUpstream, msgBadAgentResponse, err)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// augmentForwardHeaders ensures X-Forwarded-* headers capture client metadata.
func augmentForwardHeaders(h http.Header, r *http.Request) {
	if clientIP, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		prior := r.Header.Get("X-Forwarded-For")
		if prior != "" {
			clientIP = prior + ", " + clientIP
		}
		h.Set("X-Forwarded-For", clientIP)
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		h.Set("X-Forwarded-Proto", scheme)
	} else {
		h.Set("X-Forwarded-Proto", "http")
	}
	h.Set("X-Forwarded-Host", r.Host)
}
