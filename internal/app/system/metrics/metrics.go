// Package metrics exposes Prometheus collectors for the HTTP surface, the
// access gateway, the backend client and the rate limiter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gestaoalimentar"

// validateOp is the backend operation name of token validation.
const validateOp = "auth.validate_token"

// Metrics owns a registry and its collectors. It implements the observer
// interfaces of the gateway, backend, ratelimit and reportload packages.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	gatewayDecisions *prometheus.CounterVec
	gatewayRejects   *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	backendCalls     *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
	trendDiscarded   *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		gatewayDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "decisions_total",
			Help: "Access gateway decisions by terminal state.",
		}, []string{"state"}),
		gatewayRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "rejected_sessions_total",
			Help: "Sessions not accepted by the gateway, by reason.",
		}, []string{"reason"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gateway", Name: "token_validations_total",
			Help: "Token validation calls by outcome.",
		}, []string{"outcome"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend", Name: "calls_total",
			Help: "Backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "backend", Name: "call_duration_seconds",
			Help:    "Backend call duration.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"op"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ratelimit", Name: "rejected_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"path"}),
		trendDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "report", Name: "previous_discarded_total",
			Help: "Previous-month reports not used for the trend, by cause.",
		}, []string{"cause"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.gatewayDecisions,
		m.gatewayRejects,
		m.tokenValidations,
		m.backendCalls,
		m.backendDuration,
		m.rateLimited,
		m.trendDiscarded,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations labelled by chi route
// pattern. Requests to /metrics are not recorded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveGatewayDecision implements gateway.Observer.
func (m *Metrics) ObserveGatewayDecision(state, reason string) {
	m.gatewayDecisions.WithLabelValues(state).Inc()
	if reason != "" {
		m.gatewayRejects.WithLabelValues(reason).Inc()
	}
}

// ObserveBackendCall implements backend.Observer.
func (m *Metrics) ObserveBackendCall(op, outcome string, elapsed time.Duration) {
	m.backendCalls.WithLabelValues(op, outcome).Inc()
	m.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if op == validateOp {
		m.tokenValidations.WithLabelValues(outcome).Inc()
	}
}

// ObserveRateLimited implements ratelimit.Observer.
func (m *Metrics) ObserveRateLimited(path string) {
	m.rateLimited.WithLabelValues(path).Inc()
}

// ObservePreviousDiscarded implements reportload.Observer.
func (m *Metrics) ObservePreviousDiscarded(cause string) {
	m.trendDiscarded.WithLabelValues(cause).Inc()
}

// routePattern returns the matched chi pattern, which keeps label
// cardinality bounded (ids stay out of the label).
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
