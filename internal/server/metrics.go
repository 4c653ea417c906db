package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics uses a private registry so each Service can be tested in isolation.
type metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	computeDuration prometheus.Histogram
	sessionRecords  prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opdusage_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opdusage_compute_duration_seconds",
			Help:    "Time spent filtering, aggregating and binning one request.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		sessionRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opdusage_session_records",
			Help: "Cleaned records held by the loaded session.",
		}),
	}
	m.registry.MustRegister(m.requests, m.computeDuration, m.sessionRecords)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeCompute(d time.Duration) {
	m.computeDuration.Observe(d.Seconds())
}

// instrument counts requests by matched route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
