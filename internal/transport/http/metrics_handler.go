package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/phetchalermchai/it-inventory/internal/websocket"
)

// HubStatsProvider reports WebSocket hub counters
type HubStatsProvider interface {
	Stats() websocket.HubStats
}

// MetricsHandler serves the Prometheus scrape endpoint and hub statistics
type MetricsHandler struct {
	prometheus http.Handler
	hub        HubStatsProvider
	startTime  time.Time
}

// NewMetricsHandler creates a new metrics handler. prometheus is nil when
// metrics are disabled.
func NewMetricsHandler(prometheus http.Handler, hub HubStatsProvider) *MetricsHandler {
	return &MetricsHandler{
		prometheus: prometheus,
		hub:        hub,
		startTime:  time.Now(),
	}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	r.Get("/websocket", h.GetWebSocketStats)
	return r
}

// GetMetrics serves the Prometheus exposition format
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{
			"status":  "disabled",
			"message": "metrics collection is disabled",
		})
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// GetWebSocketStats returns hub counters
func (h *MetricsHandler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	var stats websocket.HubStats
	if h.hub != nil {
		stats = h.hub.Stats()
	}
	render.JSON(w, r, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).Seconds(),
		"websocket": stats,
	})
}
