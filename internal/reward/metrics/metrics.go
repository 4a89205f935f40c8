package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ValidationsTotal         *prometheus.CounterVec
	RejectionsTotal          *prometheus.CounterVec
	SuspicionFlagsTotal      *prometheus.CounterVec
	AwardedCoinsTotal        prometheus.Counter
	RaceLossesTotal          prometheus.Counter
	FlagWriteFailuresTotal   prometheus.Counter
	AuditEmitFailuresTotal   prometheus.Counter
	ValidationDurationSecond prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinguard_validations_total",
			Help: "Total number of validation calls by outcome",
		}, []string{"outcome"}),
		RejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinguard_rejections_total",
			Help: "Total number of policy rejections by reason",
		}, []string{"reason"}),
		SuspicionFlagsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinguard_suspicion_flags_total",
			Help: "Total number of suspicion flags raised by type",
		}, []string{"flag_type"}),
		AwardedCoinsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_awarded_coins_total",
			Help: "Total number of coins credited through accepted validations",
		}),
		RaceLossesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_race_losses_total",
			Help: "Total number of award attempts that lost the cooldown race at commit time",
		}),
		FlagWriteFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_flag_write_failures_total",
			Help: "Total number of suspicion flag writes that failed",
		}),
		AuditEmitFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinguard_audit_emit_failures_total",
			Help: "Total number of security log emissions that failed",
		}),
		ValidationDurationSecond: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinguard_validation_duration_seconds",
			Help:    "Duration of validation calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementValidations(outcome string) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRejections(reason string) {
	m.RejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementSuspicionFlags(flagType string) {
	m.SuspicionFlagsTotal.WithLabelValues(flagType).Inc()
}

func (m *Metrics) AddAwardedCoins(amount int) {
	m.AwardedCoinsTotal.Add(float64(amount))
}

func (m *Metrics) IncrementRaceLosses() {
	m.RaceLossesTotal.Inc()
}

func (m *Metrics) IncrementFlagWriteFailures() {
	m.FlagWriteFailuresTotal.Inc()
}

func (m *Metrics) IncrementAuditEmitFailures() {
	m.AuditEmitFailuresTotal.Inc()
}

func (m *Metrics) ObserveValidationDuration(seconds float64) {
	m.ValidationDurationSecond.Observe(seconds)
}
