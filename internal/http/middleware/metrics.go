package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collectors for the journaling API. Every metric carries the
// "journal" namespace so dashboards can tell this service apart from
// sidecars scraping the same endpoint.
//
// Route labels always use the registered Gin pattern (for example
// /api/v1/thoughts/:id/react) rather than the raw URL, so a burst of
// requests against distinct thought IDs shares one series.
var (
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	// Latency omits the status label to keep the histogram small.
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Name:      "http_request_duration_seconds",
			Help:      "Wall-clock time spent handling a request.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reqInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "journal",
			Name:      "http_requests_inflight",
			Help:      "Requests currently being handled.",
		},
	)

	// Responses are JSON and the public feed is capped at 50 entries, so
	// most bodies are small. The top buckets cover long mood histories and
	// threads with years of unsent messages.
	respBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Name:      "http_response_size_bytes",
			Help:      "Response body size in bytes.",
			Buckets: []float64{
				256, 1 << 10, 4 << 10, 16 << 10,
				64 << 10, 256 << 10, 1 << 20,
			},
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(reqTotal, reqDuration, reqInflight, respBytes)
}

// Metrics instruments each request with the collectors above. Mount it
// before the handlers and expose promhttp.Handler() on /metrics.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqInflight.Inc()
		defer reqInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			// No route matched (404s); the raw path is the best we have.
			route = c.Request.URL.Path
		}
		method := c.Request.Method

		reqTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		reqDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		// Size() is -1 until something is written; skip those rather than
		// recording a bogus negative observation.
		if size := c.Writer.Size(); size >= 0 {
			respBytes.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
