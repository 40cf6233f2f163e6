// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe(OutcomeSuccess)
	m.Observe(OutcomeSuccess)
	m.Observe(OutcomeTimeout)
	m.ObserveUpstream(250 * time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(OutcomeTimeout)); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}
	if got := testutil.CollectAndCount(m.upstream); got != 1 {
		t.Fatalf("expected histogram to be collected, got %d", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe(OutcomeSuccess)
	m.ObserveUpstream(time.Second)
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).Observe(OutcomeUpstream)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `coordinator_requests_total{outcome="upstream_error"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", rec.Body.String())
	}
}
