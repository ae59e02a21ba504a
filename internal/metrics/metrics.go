package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Build outcomes used as the "outcome" label of mesh build counters.
const (
	OutcomeBuilt     = "built"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
	OutcomeSync      = "sync"
)

// Render groups the prometheus collectors of the chunk and block-wrap renderers.
type Render struct {
	VisibleChunks  prometheus.Gauge
	QueueLength    prometheus.Gauge
	InFlight       prometheus.Gauge
	CachedMeshes   prometheus.Gauge
	Builds         *prometheus.CounterVec
	SortedRebuilds prometheus.Counter
	Wrappers       prometheus.Gauge
	FrameSections  *prometheus.HistogramVec
}

// NewRender creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests and headless runs want.
func NewRender(reg prometheus.Registerer) *Render {
	m := &Render{
		VisibleChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "visible",
			Help:      "Chunks drawn in the last opaque pass.",
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "build_queue_length",
			Help:      "Mesh build jobs waiting for a worker.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "builds_in_flight",
			Help:      "Chunk keys with an outstanding background build.",
		}),
		CachedMeshes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "cached_meshes",
			Help:      "Chunk meshes held by the render cache.",
		}),
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "builds_total",
			Help:      "Mesh builds by outcome.",
		}, []string{"outcome"}),
		SortedRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minivox",
			Subsystem: "chunks",
			Name:      "sorted_mesh_rebuilds_total",
			Help:      "Merged translucent meshes rebuilt after a depth sort.",
		}),
		Wrappers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minivox",
			Subsystem: "blockwraps",
			Name:      "wrappers",
			Help:      "Live block wrappers.",
		}),
		FrameSections: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minivox",
			Subsystem: "frame",
			Name:      "section_seconds",
			Help:      "Time spent in tracked render loop sections.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"section"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.VisibleChunks,
			m.QueueLength,
			m.InFlight,
			m.CachedMeshes,
			m.Builds,
			m.SortedRebuilds,
			m.Wrappers,
			m.FrameSections,
		)
	}
	return m
}

// Build counts one mesh build with the given outcome.
func (m *Render) Build(outcome string) {
	m.Builds.WithLabelValues(outcome).Inc()
}

// ObserveSection records one timed section of the render loop. It matches
// the profiling observer signature.
func (m *Render) ObserveSection(name string, d time.Duration) {
	m.FrameSections.WithLabelValues(name).Observe(d.Seconds())
}
