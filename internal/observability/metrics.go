package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	enrollmentsTotal      *prometheus.CounterVec
	inviteCodeRetries     prometheus.Counter
	notificationsTotal    *prometheus.CounterVec
	notificationListeners prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vstep_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vstep_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vstep_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vstep_enrollments_total",
			Help: "Enrollment operations by kind and outcome.",
		}, []string{"kind", "outcome"})

		inviteCodeRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vstep_invite_code_retries_total",
			Help: "Invite code generation retries caused by unique-index collisions.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vstep_notifications_published_total",
			Help: "Notifications published by type.",
		}, []string{"type"})

		notificationListeners = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vstep_notification_stream_clients",
			Help: "Number of connected notification stream clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			enrollmentsTotal,
			inviteCodeRetries,
			notificationsTotal,
			notificationListeners,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Enrollments exposes the counter for enrollment operations.
func Enrollments() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentsTotal
}

// InviteCodeRetries exposes the invite-code collision retry counter.
func InviteCodeRetries() prometheus.Counter {
	RegisterMetrics()
	return inviteCodeRetries
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// StreamClientsActive exposes the gauge of connected stream clients.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return notificationListeners
}
