package utils

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters and histograms for the booking flow.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	bookings      *prometheus.CounterVec
	verifications *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	reminders     *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counselbook",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Slot booking attempts by outcome",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counselbook",
			Subsystem: "payment",
			Name:      "verifications_total",
			Help:      "Payment verifications by outcome",
		}, []string{"outcome"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counselbook",
			Subsystem: "availability",
			Name:      "slot_changes_total",
			Help:      "Slots created, removed or retained by availability publishes",
		}, []string{"change"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counselbook",
			Subsystem: "reminder",
			Name:      "events_total",
			Help:      "Reminder scheduling and delivery events",
		}, []string{"event"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "counselbook",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookings, m.verifications, m.publishes, m.reminders, m.httpLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObservePublish(created, removed, retained int) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues("created").Add(float64(created))
	m.publishes.WithLabelValues("removed").Add(float64(removed))
	m.publishes.WithLabelValues("retained").Add(float64(retained))
}

func (m *BookingMetrics) ObserveReminder(event string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route, status).Observe(seconds)
}
