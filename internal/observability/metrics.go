package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paws_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"service", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paws_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paws_chat_messages_sent_total",
			Help: "Total number of chat messages fanned out.",
		},
	)
	postEngagementTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paws_post_engagement_total",
			Help: "Total number of post engagement mutations.",
		},
		[]string{"op"}, // like, unlike, comment
	)
	subscriberGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paws_live_subscribers",
			Help: "Number of live subscriptions by kind.",
		},
		[]string{"kind"}, // messages, previews
	)
	decodeSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paws_decode_skips_total",
			Help: "Stored records dropped because they failed to decode.",
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		postEngagementTotal,
		subscriberGauge,
		decodeSkipsTotal,
	)
}

// HTTPMetricsMiddleware wraps a mux router and records request counts and
// latencies labelled by service name.
func HTTPMetricsMiddleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpRequestsTotal.WithLabelValues(service, r.Method, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes connection takeover through to the underlying writer so
// websocket upgrades keep working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncMessagesSent() {
	messagesSentTotal.Inc()
}

func IncPostEngagement(op string) {
	postEngagementTotal.WithLabelValues(op).Inc()
}

func IncSubscribers(kind string) {
	subscriberGauge.WithLabelValues(kind).Inc()
}

func DecSubscribers(kind string) {
	subscriberGauge.WithLabelValues(kind).Dec()
}

func IncDecodeSkip(collection string) {
	decodeSkipsTotal.WithLabelValues(collection).Inc()
}
