package capability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors of the snapshot cache.
type Metrics struct {
	lookups       *prometheus.CounterVec
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	invalidations *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Metrics{
		lookups: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capcore_snapshot_lookups_total",
			Help: "Snapshot lookups by the source that answered them.",
		}, []string{"source"})),
		builds: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capcore_snapshot_builds_total",
			Help: "Snapshot builds by result kind.",
		}, []string{"result"})),
		buildDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "capcore_snapshot_build_duration_seconds",
			Help:    "Duration of snapshot builds against the store.",
			Buckets: prometheus.DefBuckets,
		})),
		invalidations: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capcore_snapshot_invalidations_total",
			Help: "Cache invalidations by scope.",
		}, []string{"scope"})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

func (m *Metrics) lookup(source Source) {
	if m != nil {
		m.lookups.WithLabelValues(string(source)).Inc()
	}
}

func (m *Metrics) build(kind ResultKind, took time.Duration) {
	if m != nil {
		m.builds.WithLabelValues(kind.String()).Inc()
		m.buildDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) invalidation(scope string) {
	if m != nil {
		m.invalidations.WithLabelValues(scope).Inc()
	}
}
