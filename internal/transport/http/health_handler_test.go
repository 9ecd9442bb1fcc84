package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetchalermchai/it-inventory/internal/config"
	"github.com/phetchalermchai/it-inventory/internal/services"
	"github.com/phetchalermchai/it-inventory/internal/shared/testutil"
	ws "github.com/phetchalermchai/it-inventory/internal/websocket"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/events"
)

func TestHealthHandler_Endpoints(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	inventorySvc := services.NewInventoryService(nil, logger)
	hub := ws.NewHub(logger, ws.DefaultOptions())
	handler := NewHealthHandler(services.NewHealthService("v1.0.0-test", "2026-01-01", inventorySvc, hub, logger), logger)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var status services.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "v1.0.0-test", status.Version)
	})

	t.Run("not ready without a dataset", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_ready")
	})

	t.Run("ready once the sample is loaded", func(t *testing.T) {
		_, err := inventorySvc.LoadSample(context.Background())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var status services.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "ready", status.Status)
		assert.Contains(t, rec.Body.String(), "serving sample")
	})

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alive"`)
		assert.Contains(t, rec.Body.String(), "goroutines")
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var version map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
		assert.Equal(t, "v1.0.0-test", version["version"])
	})
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := ws.NewHub(logger, ws.DefaultOptions())

	t.Run("metrics disabled", func(t *testing.T) {
		router := NewMetricsHandler(nil, hub).Routes()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "disabled")
	})

	t.Run("prometheus handler", func(t *testing.T) {
		prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("inventory_dataset_records 5\n"))
		})
		router := NewMetricsHandler(prom, hub).Routes()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "inventory_dataset_records 5")
	})

	t.Run("websocket stats", func(t *testing.T) {
		router := NewMetricsHandler(nil, hub).Routes()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/websocket", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Status    string      `json:"status"`
			WebSocket ws.HubStats `json:"websocket"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, 0, body.WebSocket.ActiveClients)
	})
}

func TestWebSocketHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := ws.NewHub(logger, ws.DefaultOptions())
	hub.Start()
	t.Cleanup(hub.Stop)

	cfg := config.Default().WebSocket
	handler := NewWebSocketHandler(hub, cfg, []string{"http://dashboard.local"}, logger)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	t.Run("allowed origin receives greeting", func(t *testing.T) {
		header := http.Header{"Origin": []string{"http://dashboard.local"}}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.NoError(t, err)
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type events.MessageType     `json:"type"`
			Data events.ConnectionEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, events.MessageTypeConnection, msg.Type)
		assert.Equal(t, "connected", msg.Data.Status)
		assert.NotEmpty(t, msg.Data.ClientID)

		hub.Broadcast(string(events.MessageTypeDatasetReplaced), map[string]string{"source": "sample"})
		_, data, err = conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(data), string(events.MessageTypeDatasetReplaced))
	})

	t.Run("foreign origin is refused", func(t *testing.T) {
		header := http.Header{"Origin": []string{"http://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("plain request is not upgraded", func(t *testing.T) {
		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
