package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	BookingOutcomeAdmitted   = "admitted"
	BookingOutcomeConflict   = "conflict"
	BookingOutcomeValidation = "validation"
	BookingOutcomeLockFailed = "lock_failed"
	BookingOutcomeError      = "error"
)

// BookingMetrics tracks admission decisions made by the booking authority.
type BookingMetrics struct {
	decisions *prometheus.CounterVec
	lockWait  *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) (*BookingMetrics, error) {
	m := &BookingMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fornet_booking_decisions_total",
			Help: "Booking requests by outcome.",
		}, []string{"outcome"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fornet_booking_lock_wait_seconds",
			Help:    "Time spent waiting for the per-resource booking lock.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"locker"}),
	}
	for _, c := range []prometheus.Collector{m.decisions, m.lockWait} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *BookingMetrics) RecordDecision(outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveLockWait(locker string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(locker).Observe(d.Seconds())
}
