// Package metrics exposes Prometheus metrics for HTTP traffic and calls to
// the signing provider.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/signet/pkg/middleware"
)

// System records metrics and serves them.
type System interface {
	// Middleware records request count and latency labelled by route pattern.
	Middleware() func(http.Handler) http.Handler
	// ObserveProviderCall records one outbound provider call.
	ObserveProviderCall(operation, outcome string, d time.Duration)
	// ObserveStatusChange counts a document moving into status.
	ObserveStatusChange(status string)
	// Handler serves the registry in the Prometheus exposition format.
	Handler() http.Handler
}

type registry struct {
	reg             *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	providerTotal   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	statusChanges   *prometheus.CounterVec
}

// New builds a System on its own registry, including Go runtime and process collectors.
func New(cfg *Config) System {
	reg := prometheus.NewRegistry()
	r := &registry{
		reg: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: cfg.Prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    cfg.Prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		providerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: cfg.Prefix + "_provider_calls_total",
				Help: "Total number of signing provider calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    cfg.Prefix + "_provider_call_duration_seconds",
				Help:    "Duration of signing provider calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: cfg.Prefix + "_document_status_changes_total",
				Help: "Total number of document status changes by new status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requestsTotal,
		r.requestDuration,
		r.providerTotal,
		r.providerLatency,
		r.statusChanges,
	)
	return r
}

func (r *registry) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := middleware.NewResponseRecorder(w)
			next.ServeHTTP(rec, req)

			// ServeMux sets Pattern on the request it matched.
			route := req.Pattern
			if route == "" {
				route = "unmatched"
			}

			r.requestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(rec.Status)).Inc()
			r.requestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func (r *registry) ObserveProviderCall(operation, outcome string, d time.Duration) {
	r.providerTotal.WithLabelValues(operation, outcome).Inc()
	r.providerLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (r *registry) ObserveStatusChange(status string) {
	r.statusChanges.WithLabelValues(status).Inc()
}

func (r *registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
