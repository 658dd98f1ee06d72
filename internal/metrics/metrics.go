// Package metrics records run counters on a private Prometheus registry and
// can dump them in the text exposition format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cocite"

// Recorder holds the counters of one run. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	worksFetched   prometheus.Counter
	fetchFailures  *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	recordsRead    prometheus.Counter
	recordsSkipped *prometheus.CounterVec
	nodes          *prometheus.GaugeVec
	edgesExported  *prometheus.GaugeVec
}

// New creates a Recorder with all counters registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		worksFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "works_fetched_total",
			Help:      "Works successfully fetched from OpenAlex.",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Work lookups that failed, by reason.",
		}, []string{"reason"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Work lookups answered without a remote call, by cache layer.",
		}, []string{"layer"}),
		recordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Local records loaded.",
		}),
		recordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Local records skipped, by reason.",
		}, []string{"reason"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the node table, by kind.",
		}, []string{"kind"}),
		edgesExported: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "edges_exported",
			Help:      "Edges written to the edge table, by kind.",
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.worksFetched,
		r.fetchFailures,
		r.cacheHits,
		r.recordsRead,
		r.recordsSkipped,
		r.nodes,
		r.edgesExported,
	)
	return r
}

// WorkFetched counts a successful remote lookup.
func (r *Recorder) WorkFetched() {
	if r == nil {
		return
	}
	r.worksFetched.Inc()
}

// FetchFailed counts a failed remote lookup.
func (r *Recorder) FetchFailed(reason string) {
	if r == nil {
		return
	}
	r.fetchFailures.WithLabelValues(reason).Inc()
}

// CacheHit counts a lookup served by the "memory" or "sqlite" layer.
func (r *Recorder) CacheHit(layer string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(layer).Inc()
}

// RecordRead counts a loaded record.
func (r *Recorder) RecordRead() {
	if r == nil {
		return
	}
	r.recordsRead.Inc()
}

// RecordSkipped counts a skipped record.
func (r *Recorder) RecordSkipped(reason string) {
	if r == nil {
		return
	}
	r.recordsSkipped.WithLabelValues(reason).Inc()
}

// SetNodes records the node count for a kind.
func (r *Recorder) SetNodes(kind string, n int) {
	if r == nil {
		return
	}
	r.nodes.WithLabelValues(kind).Set(float64(n))
}

// SetEdgesExported records the exported edge count for a kind.
func (r *Recorder) SetEdgesExported(kind string, n int) {
	if r == nil {
		return
	}
	r.edgesExported.WithLabelValues(kind).Set(float64(n))
}

// WriteFile writes all metrics to path in the Prometheus text format.
// A nil Recorder or an empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
