package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures per-route request counts and latency for the /metrics
// endpoint.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP instruments on the default registry.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "kasira"
	}
	constLabels := prometheus.Labels{"service": serviceName}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "kasira_http_requests_total",
		Help:        "Count of HTTP requests by route, method and status.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "kasira_http_request_duration_seconds",
		Help:        "HTTP request latency by route and method.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"route", "method"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "kasira_http_requests_in_flight",
		Help:        "Number of HTTP requests currently being served.",
		ConstLabels: constLabels,
	})

	for _, collector := range []prometheus.Collector{requests, duration, inFlight} {
		if err := prometheus.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = already
				continue
			}
		}
	}

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		inFlight: inFlight,
	}
}

// GinMiddleware observes every request handled by the engine.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		m.inFlight.Inc()
		c.Next()
		m.inFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		if route == "/metrics" {
			return
		}

		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
