package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	salesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_received_total",
			Help: "Total number of webhook sale submissions",
		},
		[]string{"type", "outcome"},
	)

	deliveriesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deliveries_sent_total",
			Help: "Total number of final documents delivered",
		},
	)

	salesParked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_parked_total",
			Help: "Total number of sales parked for manual intervention",
		},
	)

	sweepInspected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_inspected_total",
			Help: "Total number of pending sales inspected by the sweep",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordSale(saleType, outcome string) {
	salesReceived.WithLabelValues(saleType, outcome).Inc()
}

func RecordDelivery() {
	deliveriesSent.Inc()
}

func RecordSweep(inspected, parked int) {
	sweepInspected.Add(float64(inspected))
	salesParked.Add(float64(parked))
}
