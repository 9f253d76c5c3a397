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
			Name: "alivechat_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alivechat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alivechat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"channel"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alivechat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"channel", "event"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alivechat_messages_sent_total",
			Help: "Total number of chat messages stored, by kind.",
		},
		[]string{"kind", "mood"},
	)
	effectsTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alivechat_effects_triggered_total",
			Help: "Total number of effect rows written.",
		},
		[]string{"kind"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alivechat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		messagesSentTotal,
		effectsTriggeredTotal,
		amqpPublishErrorsTotal,
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

func IncWSActive(channel string) {
	wsActiveConnections.WithLabelValues(channel).Inc()
}

func DecWSActive(channel string) {
	wsActiveConnections.WithLabelValues(channel).Dec()
}

func IncWSEvent(channel, event string) {
	wsEventsTotal.WithLabelValues(channel, event).Inc()
}

func IncMessageSent(kind, mood string) {
	messagesSentTotal.WithLabelValues(kind, mood).Inc()
}

func IncEffectTriggered(kind string) {
	effectsTriggeredTotal.WithLabelValues(kind).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
