package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "routiner_http_requests_total",
	Help: "HTTP requests by route, method and status code.",
}, []string{"route", "method", "status"})

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "routiner_http_request_duration_seconds",
	Help:    "HTTP request latency by route.",
	Buckets: prometheus.DefBuckets,
}, []string{"route"})

var aiCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "routiner_ai_completions_total",
	Help: "Completion calls for AI log generation, by outcome.",
}, []string{"outcome"})

// MetricsMiddleware records request counts and latency per route
// template, so /habits/:id does not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAICompletion feeds the completion outcome counter from the AI
// log handler.
func ObserveAICompletion(outcome string) {
	aiCompletionsTotal.WithLabelValues(outcome).Inc()
}
