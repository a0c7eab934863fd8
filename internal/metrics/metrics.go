// Package metrics exposes Prometheus collectors for use cases and HTTP traffic.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

const namespace = "rbac"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type Recorder struct {
	useCaseTotal   *prometheus.CounterVec
	useCaseLatency *prometheus.HistogramVec
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	rateLimitHits  *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// New registers the collectors on reg. Passing the default registerer twice
// reuses the collectors already registered.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	r := &Recorder{
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "use_case_total",
			Help:      "Use case invocations by outcome kind",
		}, []string{"use_case", "outcome"}),
		useCaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "use_case_duration_seconds",
			Help:      "Use case latency",
			Buckets:   histogramBuckets,
		}, []string{"use_case"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}, []string{"route"}),
		gatherer: gatherer,
	}
	r.useCaseTotal = registerCounter(reg, r.useCaseTotal)
	r.useCaseLatency = registerHistogram(reg, r.useCaseLatency)
	r.requestTotal = registerCounter(reg, r.requestTotal)
	r.requestLatency = registerHistogram(reg, r.requestLatency)
	r.rateLimitHits = registerCounter(reg, r.rateLimitHits)
	return r
}

// NewDefault registers on the process-wide Prometheus registry.
func NewDefault() *Recorder {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return h
}

func (r *Recorder) ObserveUseCase(name string, kind apperr.Kind, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.useCaseTotal.WithLabelValues(name, string(kind)).Inc()
	r.useCaseLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	r.requestTotal.With(labels).Inc()
	r.requestLatency.With(labels).Observe(elapsed.Seconds())
}

func (r *Recorder) RateLimitHit(route string) {
	if r == nil {
		return
	}
	r.rateLimitHits.WithLabelValues(route).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
