// Package metrics provides Prometheus metrics for the simulation runtime,
// grounded on the teacher's infrastructure/metrics package but scoped to
// tick/job/event-bus concerns instead of HTTP/blockchain/database ones.
package metrics

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for one engine instance.
type Metrics struct {
	TicksTotal       prometheus.Counter
	TickDuration     prometheus.Histogram
	JobsAssigned     prometheus.Counter
	JobsCompleted    prometheus.Counter
	JobsFailed       prometheus.Counter
	JobsCancelled    prometheus.Counter
	JobBoardSize     prometheus.Gauge
	EventBusDepth    *prometheus.GaugeVec
	PluginLoadErrors prometheus.Counter
}

// New creates a Metrics instance registered against the default registerer.
func New(engineName string) *Metrics {
	return NewWithRegistry(engineName, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against a custom
// registerer, useful for isolated tests.
func NewWithRegistry(engineName string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_ticks_total",
			Help:        "Total number of simulation ticks processed.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "simcore_tick_duration_seconds",
			Help:        "Wall-clock duration of a single tick.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		JobsAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_jobs_assigned_total",
			Help:        "Total number of jobs claimed by an agent.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_jobs_completed_total",
			Help:        "Total number of jobs that reached the complete state.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_jobs_failed_total",
			Help:        "Total number of jobs that reached the failed state.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		JobsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_jobs_cancelled_total",
			Help:        "Total number of jobs that reached the cancelled state.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		JobBoardSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "simcore_job_board_size",
			Help:        "Current number of open jobs on the board.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
		EventBusDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "simcore_event_bus_depth",
			Help:        "Current number of buffered events per bus.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}, []string{"bus"}),
		PluginLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "simcore_plugin_load_errors_total",
			Help:        "Total number of native plugin load failures.",
			ConstLabels: prometheus.Labels{"engine": engineName},
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.TicksTotal,
			m.TickDuration,
			m.JobsAssigned,
			m.JobsCompleted,
			m.JobsFailed,
			m.JobsCancelled,
			m.JobBoardSize,
			m.EventBusDepth,
			m.PluginLoadErrors,
		)
	}

	return m
}

// RecordTick records one tick's wall-clock duration.
func (m *Metrics) RecordTick(d time.Duration) {
	m.TicksTotal.Inc()
	m.TickDuration.Observe(d.Seconds())
}

// SetEventBusDepth sets the buffered-event gauge for a named bus.
func (m *Metrics) SetEventBusDepth(bus string, depth int) {
	m.EventBusDepth.WithLabelValues(bus).Set(float64(depth))
}

// Enabled reports whether metrics collection should be active, honoring the
// METRICS_ENABLED environment variable (default: enabled).
func Enabled() bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED")))
	if raw == "" {
		return true
	}
	switch raw {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

var (
	global   *Metrics
	globalMu sync.Mutex
)

// Init initializes and returns the global Metrics instance.
func Init(engineName string) *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New(engineName)
	}
	return global
}

// Global returns the global Metrics instance, initializing it with a
// placeholder name if it has not been set up yet.
func Global() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New("simcore")
	}
	return global
}
