package fs

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hdx/pkg/core"
)

type metrics struct {
	operations     *prometheus.CounterVec
	backupFailures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hdx",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Collection loads and saves by outcome.",
		}, []string{"collection", "operation", "result"}),
		backupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hdx",
			Subsystem: "store",
			Name:      "backup_failures_total",
			Help:      "Backups that could not be written before a save.",
		}, []string{"collection"}),
	}
	m.operations = register(reg, m.operations)
	m.backupFailures = register(reg, m.backupFailures)
	return m
}

// register reuses an already registered collector so several stores can
// share one registerer.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observe(c core.Collection, op, result string) {
	m.operations.WithLabelValues(string(c), op, result).Inc()
}
