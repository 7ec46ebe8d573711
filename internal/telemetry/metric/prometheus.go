package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/supsim/internal/core/domain"
)

const namespace = "supsim"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Snapshot metrics
	SnapshotsCreated *prometheus.CounterVec
	CreateRejected   *prometheus.CounterVec
	SnapshotUploads  *prometheus.CounterVec
	SnapshotsDeleted prometheus.Counter
	StoredCount      prometheus.Gauge
	StoredBytes      prometheus.Gauge
	GateHeldGauge    prometheus.Gauge

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all metrics registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewCollector(time.Now()),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		SnapshotsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_created_total",
			Help:      "Snapshots created, by type.",
		}, []string{"type"}),
		CreateRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_create_rejected_total",
			Help:      "Snapshot creations rejected, by reason.",
		}, []string{"reason"}),
		SnapshotUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_uploads_total",
			Help:      "Snapshot uploads, by result.",
		}, []string{"result"}),
		SnapshotsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_deleted_total",
			Help:      "Snapshots deleted.",
		}),
		StoredCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshots_stored",
			Help:      "Snapshots currently stored.",
		}),
		StoredBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_stored",
			Help:      "Total archive bytes currently stored.",
		}),
		GateHeldGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gate_held",
			Help:      "1 while the snapshot gate is held.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Registerer exposes the underlying registry for components that add
// their own collectors (the badger engine, for one).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SnapshotCreated implements service.Recorder.
func (r *Registry) SnapshotCreated(kind domain.SnapshotType) {
	r.SnapshotsCreated.WithLabelValues(string(kind)).Inc()
}

// SnapshotRejected implements service.Recorder.
func (r *Registry) SnapshotRejected(reason string) {
	r.CreateRejected.WithLabelValues(reason).Inc()
}

// SnapshotUploaded implements service.Recorder.
func (r *Registry) SnapshotUploaded(ok bool) {
	result := "ok"
	if !ok {
		result = "bad"
	}
	r.SnapshotUploads.WithLabelValues(result).Inc()
}

// SnapshotDeleted implements service.Recorder.
func (r *Registry) SnapshotDeleted() {
	r.SnapshotsDeleted.Inc()
}

// SnapshotsStored implements service.Recorder.
func (r *Registry) SnapshotsStored(stats domain.SnapshotStats) {
	r.StoredCount.Set(float64(stats.Count))
	r.StoredBytes.Set(float64(stats.Bytes))
}

// GateHeld implements service.Recorder.
func (r *Registry) GateHeld(held bool) {
	if held {
		r.GateHeldGauge.Set(1)
		return
	}
	r.GateHeldGauge.Set(0)
}
