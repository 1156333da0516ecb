package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mercadito_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	OrdersCheckedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercadito_orders_checked_out_total",
		Help: "Orders created at checkout.",
	})

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercadito_reservations_created_total",
		Help: "Reservations created in pending state.",
	})

	ReservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercadito_reservations_capacity_rejected_total",
		Help: "Reservation attempts rejected for insufficient capacity.",
	})

	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mercadito_payment_webhooks_total",
		Help: "Payment notifications by provider and outcome.",
	}, []string{"provider", "outcome"})

	AmountMismatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mercadito_payment_amount_mismatches_total",
		Help: "Confirmations whose paid amount did not match the expected total.",
	}, []string{"provider"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mercadito_emails_sent_total",
		Help: "Notification emails by kind and result.",
	}, []string{"kind", "result"})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request latency per route. The route template, not the
// raw path, keeps cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
