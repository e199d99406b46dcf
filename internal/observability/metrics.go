package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_sim"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// simulation runtime, the change pipeline and the HTTP surface.
type Metrics struct {
	// Simulation runtime metrics.
	RuntimeRunning     prometheus.Gauge
	TicksTotal         prometheus.Counter
	Changes            *prometheus.CounterVec // labels: kind={weather,disaster,season}
	ChangesDropped     prometheus.Counter
	DisastersTriggered *prometheus.CounterVec // labels: type
	DisastersActive    prometheus.Gauge
	CurrentSeason      prometheus.Gauge

	// Change pipeline metrics.
	MessagesConsumed        prometheus.Counter
	MessagesProduced        prometheus.Counter
	TransformErrors         prometheus.Counter
	SinkErrors              *prometheus.CounterVec // labels: sink
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// API metrics.
	HTTPRequestDuration *prometheus.HistogramVec // labels: route, code
	FeedClients         prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// NewMetricsWithRegistry registers a fresh set of metrics with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		RuntimeRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runtime_running",
			Help:      "1 when the simulation loop is active, 0 when stopped.",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total simulation ticks processed.",
		}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Weather, disaster and season changes by kind.",
		}, []string{"kind"}),
		ChangesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_dropped_total",
			Help:      "Changes dropped because the publish buffer was full.",
		}),
		DisastersTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disasters_triggered_total",
			Help:      "Disasters started by type.",
		}, []string{"type"}),
		DisastersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disasters_active",
			Help:      "Disasters currently in progress.",
		}),
		CurrentSeason: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "season",
			Help:      "Current season: 0 Spring, 1 Summer, 2 Autumn, 3 Winter.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total changes read from the runtime by the pipeline.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total changes delivered to every sink.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total changes that failed to serialize.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed batch deliveries by sink.",
		}, []string{"sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of changes per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route pattern and status code.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "code"}),
		FeedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected live feed websocket clients.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RuntimeRunning,
		m.TicksTotal,
		m.Changes,
		m.ChangesDropped,
		m.DisastersTriggered,
		m.DisastersActive,
		m.CurrentSeason,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.SinkErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.HTTPRequestDuration,
		m.FeedClients,
	}
}
