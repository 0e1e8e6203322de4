// Package metrics exposes Prometheus collectors for HTTP traffic and booking outcomes.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bookings        *prometheus.CounterVec
	bookingFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightbook_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightbook_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightbook_bookings_total",
			Help: "Booking state changes.",
		}, []string{"event"}),
		bookingFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightbook_booking_failures_total",
			Help: "Rejected booking operations by reason.",
		}, []string{"operation", "reason"}),
	}
}

func (m *Metrics) BookingCreated() {
	m.bookings.WithLabelValues("created").Inc()
}

func (m *Metrics) BookingCancelled() {
	m.bookings.WithLabelValues("cancelled").Inc()
}

func (m *Metrics) BookingFailed(operation, reason string) {
	m.bookingFailures.WithLabelValues(operation, reason).Inc()
}

// Middleware records one sample per request, labelled by the matched route
// pattern rather than the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
