package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sifan077/snipr/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.ObserveSubmission("succeeded", 120*time.Millisecond)
	m.ObserveSubmission("succeeded", 80*time.Millisecond)
	m.ObserveSubmission("rejected", 0)
	m.ObserveDistribution("copy", "succeeded")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.distributions.WithLabelValues("copy", "succeeded")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestServiceMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	m := NewServiceMetrics(reg)

	m.ObserveRequest("/api/shorten", "POST", 201, time.Millisecond)
	m.ObserveRequest("/api/shorten", "POST", 409, time.Millisecond)
	m.LinkCreated()
	m.ObserveRedirect("expired")
	m.ObserveCache(true)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/shorten", "POST", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/shorten", "POST", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redirects.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("miss")))
}

func TestNewServer_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	m := NewWorkflowMetrics(reg)
	m.ObserveDistribution("qr", "failed")

	srv := NewServer(config.PrometheusConfig{}, reg)
	assert.Equal(t, ":9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `snipr_workflow_distributions_total{channel="qr",outcome="failed"} 1`))
}
