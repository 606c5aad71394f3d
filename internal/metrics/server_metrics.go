// Package metrics provides the prometheus collectors for protocol requests and upstream
// calls, plus a small runtime snapshot served by the health endpoint.
// file: internal/metrics/server_metrics.go.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

const namespace = "deezerwidget"

var (
	// Registry holds every collector of this package. It is separate from the
	// prometheus default registry so tests and embedding programs stay isolated.
	Registry = prometheus.NewRegistry()

	// RequestsTotal counts protocol requests by method and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of MCP requests handled, by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	// RequestDuration observes protocol request latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of MCP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// UpstreamCallsTotal counts outbound calls by target and outcome.
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Total number of outbound HTTP calls, by target and outcome.",
		},
		[]string{"target", "outcome"},
	)

	// UpstreamDuration observes outbound call latency.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Latency of outbound HTTP calls in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"target"},
	)

	// ActiveSessions tracks open HTTP sessions and stdio connections.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open MCP connections and HTTP sessions.",
		},
	)

	startTime = time.Now()
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		UpstreamCallsTotal,
		UpstreamDuration,
		ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveRequest records one handled protocol request.
func ObserveRequest(method, outcome string, d time.Duration) {
	RequestsTotal.WithLabelValues(method, outcome).Inc()
	RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveUpstream records one outbound call.
func ObserveUpstream(target, outcome string, d time.Duration) {
	UpstreamCallsTotal.WithLabelValues(target, outcome).Inc()
	UpstreamDuration.WithLabelValues(target).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Snapshot is a point-in-time view of the process used by the health endpoint.
type Snapshot struct {
	StartTime     time.Time `json:"startTime"`
	Uptime        string    `json:"uptime"`
	GoVersion     string    `json:"goVersion"`
	NumGoroutines int       `json:"numGoroutines"`
	MemoryAlloc   uint64    `json:"memoryAllocated"`
}

// TakeSnapshot collects the current Snapshot.
func TakeSnapshot() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Snapshot{
		StartTime:     startTime,
		Uptime:        time.Since(startTime).Round(time.Second).String(),
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		MemoryAlloc:   m.Alloc,
	}
}
