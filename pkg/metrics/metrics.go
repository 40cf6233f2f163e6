// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package metrics exposes Prometheus instrumentation for the coordinator
// proxy.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Outcome labels for coordinator_requests_total.
const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation_error"
	OutcomeConfiguration = "configuration_error"
	OutcomeTimeout       = "timeout"
	OutcomeUpstream      = "upstream_error"
	OutcomeTransport     = "transport_error"
)

// Metrics groups the collectors recorded by the proxy.
type Metrics struct {
	requests *prometheus.CounterVec
	upstream prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coordinator_requests_total",
			Help: "Coordinator relay invocations by outcome",
		}, []string{"outcome"}),
		upstream: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coordinator_upstream_duration_seconds",
			Help:    "Time spent waiting on the coordinator agent",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}
	reg.MustRegister(m.requests, m.upstream)
	return m
}

// Observe counts one finished invocation. A nil receiver is a no-op.
func (m *Metrics) Observe(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the latency of one outbound call.
func (m *Metrics) ObserveUpstream(d time.Duration) {
	if m == nil {
		return
	}
	m.upstream.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs handler on addr until ctx is cancelled. An empty addr disables
// the listener.
func Serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	go func() {
		logger.Info().Str("metrics_addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
