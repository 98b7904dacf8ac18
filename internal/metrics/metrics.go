package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors on a private registry so several
// servers (and tests) never collide on the default registerer.
type Metrics struct {
	registry *prometheus.Registry

	pageViews           *prometheus.CounterVec
	sharedStateWrites   *prometheus.CounterVec
	artifactLoadSeconds *prometheus.HistogramVec
	datasetRows         prometheus.Gauge
}

// New creates and registers the dashboard collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pageViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zymeboard_page_views_total",
				Help: "Total number of page renders by route",
			},
			[]string{"route"},
		),
		sharedStateWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zymeboard_shared_state_writes_total",
				Help: "Total number of session slot writes by kind",
			},
			[]string{"kind"},
		),
		artifactLoadSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zymeboard_artifact_load_seconds",
				Help:    "Time spent fetching and parsing result artifacts by source",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"source"},
		),
		datasetRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zymeboard_dataset_rows",
				Help: "Number of protein records being served",
			},
		),
	}
	m.registry.MustRegister(m.pageViews, m.sharedStateWrites, m.artifactLoadSeconds, m.datasetRows)
	return m
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageView counts one render of route
func (m *Metrics) PageView(route string) {
	if route == "" {
		route = "/"
	}
	m.pageViews.WithLabelValues(route).Inc()
}

// SharedStateWrite counts one slot write of the given kind
func (m *Metrics) SharedStateWrite(kind string) {
	m.sharedStateWrites.WithLabelValues(kind).Inc()
}

// ObserveLoad records how long a source took to load
func (m *Metrics) ObserveLoad(source string, d time.Duration) {
	m.artifactLoadSeconds.WithLabelValues(source).Observe(d.Seconds())
}

// SetDatasetRows records the size of the served dataset
func (m *Metrics) SetDatasetRows(n int) {
	m.datasetRows.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
