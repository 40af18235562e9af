// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "event_manager"

// Registry is the registry every collector in this package is created on.
// It is separate from prometheus.DefaultRegisterer so tests can gather it
// without picking up collectors from imported libraries.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

var (
	// HTTPRequestsTotal counts requests by method, chi route pattern and status.
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration records request latency in seconds.
	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// AuthOutcomes counts auth decisions.
	// operation: register|login|logout|authenticate
	// outcome: success|invalid|conflict|denied|revoked|error
	AuthOutcomes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_outcomes_total",
			Help:      "Authentication decisions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// RateLimited counts requests rejected by the per-client limiter.
	RateLimited = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected with 429 by the rate limiter",
		},
	)
)

// Handler serves the collectors in Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// HTTPMiddleware records request count and latency.
//
// The route label is the chi route pattern ("/api/event/events/{id}"), read
// after the handler ran so that sub-router patterns are complete. Using the
// raw URL path would create one series per event ID.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
