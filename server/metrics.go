package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spootify_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})

	streamedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spootify_streamed_bytes_total",
		Help: "Bytes of local audio served by the range streamer.",
	})

	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spootify_play_resolutions_total",
		Help: "Play request resolutions, by final target.",
	}, []string{"target"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spootify_uploads_total",
		Help: "Uploaded files, by outcome.",
	}, []string{"outcome"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts every request by method and status. Upgrade
// requests pass through unwrapped so the websocket handler can hijack
// the connection.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// MetricsHandler exposes the prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// HealthzHandler reports liveness and the catalog size.
func (h *APIHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"tracks": h.catalog.Len(),
	})
}
