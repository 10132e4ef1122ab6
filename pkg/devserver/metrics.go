package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	feedback    *prometheus.CounterVec
	rateLimited prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "menudata_devserver_requests_total",
			Help: "Number of API requests handled, by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menudata_devserver_request_duration_seconds",
			Help:    "Time spent serving API requests, by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		feedback: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "menudata_devserver_feedback_total",
			Help: "Number of ratings recorded, by feedback type.",
		}, []string{"type"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "menudata_devserver_rate_limited_total",
			Help: "Number of requests rejected by the rate limiter.",
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) recordFeedback(kind string) {
	if kind == "" {
		kind = "none"
	}
	m.feedback.WithLabelValues(kind).Inc()
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts and times every request to endpoint
func (m *metrics) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		m.requests.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
