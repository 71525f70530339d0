package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "snipr"

// WorkflowMetrics records submissions and distributions of the link-creation workflow.
type WorkflowMetrics struct {
	submissions   *prom.CounterVec
	latency       *prom.HistogramVec
	distributions *prom.CounterVec
}

// NewWorkflowMetrics registers the workflow collectors on reg.
func NewWorkflowMetrics(reg prom.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		submissions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Shorten submissions by outcome.",
		}, []string{"outcome"}),
		latency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "submission_seconds",
			Help:      "Time spent waiting for the shortening service.",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		distributions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "distributions_total",
			Help:      "Distribution attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	reg.MustRegister(m.submissions, m.latency, m.distributions)
	return m
}

func (m *WorkflowMetrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	m.submissions.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

func (m *WorkflowMetrics) ObserveDistribution(channel, outcome string) {
	m.distributions.WithLabelValues(channel, outcome).Inc()
}

// ServiceMetrics instruments the reference shortening service.
type ServiceMetrics struct {
	requests  *prom.CounterVec
	duration  *prom.HistogramVec
	created   prom.Counter
	redirects *prom.CounterVec
	cacheHits *prom.CounterVec
}

// NewServiceMetrics registers the service collectors on reg.
func NewServiceMetrics(reg prom.Registerer) *ServiceMetrics {
	m := &ServiceMetrics{
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		created: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "links",
			Name:      "created_total",
			Help:      "Short links created.",
		}),
		redirects: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "links",
			Name:      "redirects_total",
			Help:      "Redirect lookups by result.",
		}, []string{"result"}),
		cacheHits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Redirect cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.duration, m.created, m.redirects, m.cacheHits)
	return m
}

func (m *ServiceMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *ServiceMetrics) LinkCreated() { m.created.Inc() }

// ObserveRedirect takes "found", "missing" or "expired".
func (m *ServiceMetrics) ObserveRedirect(result string) {
	m.redirects.WithLabelValues(result).Inc()
}

func (m *ServiceMetrics) ObserveCache(hit bool) {
	if hit {
		m.cacheHits.WithLabelValues("hit").Inc()
		return
	}
	m.cacheHits.WithLabelValues("miss").Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
