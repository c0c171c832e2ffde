// Package metrics exposes Prometheus counters for trimming and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "polyatrim"

// Metrics groups every collector. Build one per registry with New.
type Metrics struct {
	ReadsTotal        prometheus.Counter
	TrimmedReadsTotal prometheus.Counter
	BasesTrimmedTotal prometheus.Counter
	TailLength        prometheus.Histogram

	// Labels: route, method, status
	HTTPRequestsTotal *prometheus.CounterVec
	// Labels: route, method
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ReadsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Reads decoded",
		}),
		TrimmedReadsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trimmed_reads_total",
			Help:      "Reads with a non-empty poly-A tail",
		}),
		BasesTrimmedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bases_trimmed_total",
			Help:      "Tail bases removed",
		}),
		TailLength: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tail_length",
			Help:      "Poly-A tail length per read",
			Buckets:   []float64{0, 5, 10, 15, 20, 30, 50, 75, 100, 150, 250},
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveRead records one decoded read. Safe on a nil receiver.
func (m *Metrics) ObserveRead(tailLen int) {
	if m == nil {
		return
	}
	m.ReadsTotal.Inc()
	m.TailLength.Observe(float64(tailLen))
	if tailLen > 0 {
		m.TrimmedReadsTotal.Inc()
		m.BasesTrimmedTotal.Add(float64(tailLen))
	}
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
