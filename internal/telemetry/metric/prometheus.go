package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wirecache"

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Protocol error metrics
	DecodeErrors prometheus.Counter
	ParseErrors  prometheus.Counter

	// Rate limiting
	RateLimited prometheus.Counter
}

// New creates the application metrics and registers them, together with
// the standard Go and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Currently open client connections",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total accepted client connections",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Total executed commands by name",
		}, []string{"command"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "command_duration_seconds",
			Help:      "Command execution latency by name",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"command"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proto",
			Name:      "decode_errors_total",
			Help:      "Total malformed frames rejected by the decoder",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proto",
			Name:      "parse_errors_total",
			Help:      "Total well-formed frames rejected by the command parser",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "rate_limited_total",
			Help:      "Total commands rejected by per-client rate limiting",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.CommandsTotal,
		m.CommandDuration,
		m.DecodeErrors,
		m.ParseErrors,
		m.RateLimited,
	)

	return m
}

// Registry returns the underlying registry, for registering engine or
// subsystem metrics next to the application's.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
