package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests.",
	}, []string{"route"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"route", "method", "code"})

	// AICallsTotal counts model calls by provider and outcome (ok, rate_limited, ...).
	AICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_calls_total",
		Help: "Total number of model calls by outcome.",
	}, []string{"provider", "outcome"})

	AICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_call_duration_seconds",
		Help:    "Duration of model calls.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quota_rejections_total",
		Help: "Analysis requests rejected by the daily quota.",
	})

	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analysis_persist_failures_total",
		Help: "Analysis results that could not be written back to the review.",
	})

	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections",
		Help: "Currently open websocket connections.",
	})
)

// ObserveAICall records one model call.
func ObserveAICall(provider, outcome string, duration time.Duration) {
	AICallsTotal.WithLabelValues(provider, outcome).Inc()
	AICallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// PrometheusMiddleware records request counts and latency per matched route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
