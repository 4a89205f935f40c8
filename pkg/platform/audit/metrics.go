package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the security log publisher.
type Metrics struct {
	QueueDepth       prometheus.Gauge
	EntriesDropped   prometheus.Counter
	EntriesEnqueued  prometheus.Counter
	PersistFailures  prometheus.Counter
	EntriesPersisted prometheus.Counter
}

// NewMetrics registers and returns the publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coinguard_security_log_queue_depth",
			Help: "Current number of entries in the security log publisher queue",
		}),
		EntriesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_security_log_entries_dropped_total",
			Help: "Total number of security log entries dropped due to a full buffer",
		}),
		EntriesEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_security_log_entries_enqueued_total",
			Help: "Total number of security log entries enqueued",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_security_log_persist_failures_total",
			Help: "Total number of security log persistence failures",
		}),
		EntriesPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_security_log_entries_persisted_total",
			Help: "Total number of security log entries persisted",
		}),
	}
}
