package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostelx_http_requests_total",
			Help: "Total number of HTTP requests processed by the marketplace service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostelx_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hostelx_ws_active_connections",
			Help: "Number of active websocket subscriptions.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostelx_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostelx_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	activePostsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostelx_posts_active",
			Help: "Number of listings that have not expired.",
		},
	)
	requestTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostelx_request_transitions_total",
			Help: "Total number of request status transitions.",
		},
		[]string{"status"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostelx_messages_sent_total",
			Help: "Total number of chat messages stored.",
		},
	)
	otpEmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostelx_otp_emails_total",
			Help: "Total number of OTP emails attempted.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		activePostsGauge,
		requestTransitionsTotal,
		messagesSentTotal,
		otpEmailsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func SetActivePosts(count int) {
	activePostsGauge.Set(float64(count))
}

func IncRequestTransition(status string) {
	requestTransitionsTotal.WithLabelValues(status).Inc()
}

func IncMessageSent() {
	messagesSentTotal.Inc()
}

func IncOTPEmail(result string) {
	otpEmailsTotal.WithLabelValues(result).Inc()
}
