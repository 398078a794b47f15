package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors the service exports.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	bookings     *prometheus.CounterVec
	staleFetches prometheus.Counter
	reminders    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_writes_total",
			Help:      "Appointment writes by operation and outcome.",
		}, []string{"operation", "outcome"}),
		staleFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_availability_discarded_total",
			Help:      "Availability results dropped because the selection changed mid-fetch.",
		}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Day-before reminders by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.bookings, m.staleFetches, m.reminders)
	return m
}

// Middleware records request counts and latency keyed by the matched gin route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveWrite counts an appointment write; a nil receiver is a no-op.
func (m *Metrics) ObserveWrite(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.bookings.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) StaleFetchDiscarded() {
	if m == nil {
		return
	}
	m.staleFetches.Inc()
}

func (m *Metrics) ReminderSent(err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.reminders.WithLabelValues(outcome).Inc()
}
