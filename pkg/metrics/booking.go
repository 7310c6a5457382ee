package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records booking lifecycle outcomes.
type BookingMetrics struct {
	decisions *prometheus.CounterVec
	noVacancy prometheus.Counter
	expired   prometheus.Counter
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_decisions_total",
		Help: "Booking decisions by outcome.",
	}, []string{"outcome"})
	noVacancy := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_no_vacancy_total",
		Help: "Confirmations refused because inventory ran out.",
	})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_expired_total",
		Help: "Bookings expired by the sweeper.",
	})
	reg.MustRegister(decisions, noVacancy, expired)
	return &BookingMetrics{
		decisions: decisions,
		noVacancy: noVacancy,
		expired:   expired,
	}
}

// IncDecision increments the decision counter for the given outcome.
func (b *BookingMetrics) IncDecision(outcome string) {
	if b == nil || b.decisions == nil {
		return
	}
	b.decisions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncNoVacancy increments the vacancy conflict counter.
func (b *BookingMetrics) IncNoVacancy() {
	if b == nil || b.noVacancy == nil {
		return
	}
	b.noVacancy.Inc()
}

// IncExpired increments the expiry counter.
func (b *BookingMetrics) IncExpired() {
	if b == nil || b.expired == nil {
		return
	}
	b.expired.Inc()
}
