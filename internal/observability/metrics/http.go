package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes request counters and latencies on /metrics.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fornet_http_requests_total",
			Help: "HTTP requests by namespace, route and status class.",
		}, []string{"namespace", "route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fornet_http_request_duration_seconds",
			Help:    "HTTP request latency by namespace and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"namespace", "route"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GinMiddleware records one sample per request. Unmatched routes collapse into
// "unknown" to keep label cardinality bounded.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		ns := namespaceOf(route)
		m.requests.WithLabelValues(ns, route, c.Request.Method, statusClass(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(ns, route).Observe(time.Since(start).Seconds())
	}
}

func namespaceOf(route string) string {
	switch {
	case strings.HasPrefix(route, "/sites/"):
		return "site"
	case strings.HasPrefix(route, "/dashboard"), strings.HasPrefix(route, "/api/"):
		return "admin"
	case strings.HasPrefix(route, "/auth"), strings.HasPrefix(route, "/login"), strings.HasPrefix(route, "/signup"):
		return "auth"
	case strings.HasPrefix(route, "/webhooks/"):
		return "webhook"
	default:
		return "marketing"
	}
}

func statusClass(status int) string {
	if status <= 0 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		return nil
	}
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
