// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	PathCoordinator = "/coordinator"
	PathHello       = "/hello"
	PathHealth      = "/healthz"
)

type successResponse struct {
	Message       string `json:"message"`
	AgentResponse string `json:"agent_response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP routes gateway traffic: the coordinator relay plus the hello and
// health probes.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	event := p.logger.With().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Logger()

	switch strings.TrimSuffix(r.URL.Path, "/") {
	case PathCoordinator:
		p.serveCoordinator(w, r, event, start)
	case PathHello:
		p.serveHello(w, r, event)
	case PathHealth:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, event)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"}, event)
		event.Debug().Msg("no route")
	}
}

func (p *Proxy) serveCoordinator(w http.ResponseWriter, r *http.Request, event zerolog.Logger, start time.Time) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"}, event)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		msg := "Failed to read request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Request body too large"
		}
		p.metrics.Observe(KindValidation.outcome())
		p.writeError(w, newError(KindValidation, msg, err), event, start)
		return
	}

	result, err := p.invoke(r.Context(), payload, r)
	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			perr = newError(KindTransport, msgTransport, err)
		}
		p.writeError(w, perr, event, start)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Message:       "Success",
		AgentResponse: result.AgentResponse,
	}, event)

	event.Info().
		Str("session_id", result.SessionID).
		Dur("duration", time.Since(start)).
		Msg("request relayed")
}

// serveHello answers a static greeting for gateway integration checks.
func (p *Proxy) serveHello(w http.ResponseWriter, r *http.Request, event zerolog.Logger) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"}, event)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "world"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, " + name + "!"}, event)
}

func (p *Proxy) writeError(w http.ResponseWriter, perr *Error, event zerolog.Logger, start time.Time) {
	writeJSON(w, perr.Status(), errorResponse{Error: perr.Message}, event)

	logEvent := event.Error()
	if perr.Kind == KindValidation {
		logEvent = event.Warn()
	}
	if perr.UpstreamStatus != 0 {
		logEvent = logEvent.Int("upstream_status", perr.UpstreamStatus)
	}
	logEvent.
		Err(perr).
		Str("kind", string(perr.Kind)).
		Int("status", perr.Status()).
		Dur("duration", time.Since(start)).
		Msg("request failed")
}

func writeJSON(w http.ResponseWriter, status int, v any, event zerolog.Logger) {
	body, err := marshalJSON(v)
	if err != nil {
		event.Error().Err(err).Msg("encode response failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		event.Error().Err(err).Msg("write response failed")
	}
}
