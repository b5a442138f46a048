package logger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// counter is shared by every hook, Init may run more than once (tests, reloads).
var counter *prometheus.CounterVec //nolint:gochecknoglobals

// PrometheusHook counts log statements per level.
type PrometheusHook struct {
	statements *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if h.statements == nil || level == zerolog.NoLevel {
		return
	}

	h.statements.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook returns a hook counting how often a specific log level was used.
// The counter is registered on the default registerer once.
func NewPrometheusHook(serviceName string) PrometheusHook {
	if counter != nil {
		return PrometheusHook{statements: counter}
	}

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "log_statements_total",
			Help:        "Number of log statements, differentiated by log level.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
		[]string{"level"},
	)

	if err := prometheus.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				vec = existing
			}
		}
	}

	counter = vec

	return PrometheusHook{statements: counter}
}
