// Package metrics exposes dashboard counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdash/internal/models"
)

const namespace = "salesdash"

// Recorder owns a private registry so tests and multiple servers don't
// collide on the global one. A nil Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	chartUpdates   *prometheus.CounterVec
	guardDrops     *prometheus.CounterVec
	dashboardLoads *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	snapshots      *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		chartUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_updates_total",
			Help:      "Chart update cycles by chart and outcome.",
		}, []string{"chart", "outcome"}),
		guardDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_drops_total",
			Help:      "Update triggers dropped because the chart was already updating.",
		}, []string{"chart"}),
		dashboardLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_loads_total",
			Help:      "Full dashboard reloads by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Metrics API request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Dashboard snapshots by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.chartUpdates,
		r.guardDrops,
		r.dashboardLoads,
		r.fetchDuration,
		r.snapshots,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Outcome maps an update error onto a low-cardinality label value
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrStaleResponse):
		return "stale"
	case errors.Is(err, models.ErrInvalidFilter):
		return "invalid_filter"
	case errors.Is(err, models.ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, models.ErrServerReported):
		return "server_error"
	case errors.Is(err, models.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, models.ErrMissingTarget):
		return "missing_target"
	}
	return "error"
}

func (r *Recorder) ChartUpdate(chartID string, err error) {
	if r == nil {
		return
	}
	r.chartUpdates.WithLabelValues(chartID, Outcome(err)).Inc()
}

func (r *Recorder) GuardDrop(chartID string) {
	if r == nil {
		return
	}
	r.guardDrops.WithLabelValues(chartID).Inc()
}

// DashboardLoad records a full reload; skipped reloads use "skipped"
func (r *Recorder) DashboardLoad(outcome string) {
	if r == nil {
		return
	}
	r.dashboardLoads.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveFetch(endpoint string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (r *Recorder) Snapshot(err error) {
	if r == nil {
		return
	}
	r.snapshots.WithLabelValues(Outcome(err)).Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
