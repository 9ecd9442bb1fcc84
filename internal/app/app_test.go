package app

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetchalermchai/it-inventory/internal/config"
	apierrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
	"github.com/phetchalermchai/it-inventory/internal/shared/testutil"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/events"
)

const reportCSV = "หน่วยงาน,ข้าราชการ,พนักงานราชการ,ลูกจ้างประจำ,รวมบุคลากร\n" +
	"Unit A,4,2,1,7\n" +
	"Unit B,2,1,0,3\n"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Telemetry.EnableTracing = false
	cfg.Telemetry.EnableMetrics = true
	cfg.Security.AllowedOrigins = []string{"http://localhost:8080"}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)
	return app, logs
}

func serve(t *testing.T, h http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestParserConfig(t *testing.T) {
	cfg := config.Default().Dataset
	cfg.HeaderRows = 2
	cfg.Delimiter = ";"
	cfg.MaxUploadBytes = 1024
	cfg.LegacyEncoding = "windows-874"

	pc := ParserConfig(cfg)

	assert.Equal(t, 2, pc.HeaderRows)
	assert.Equal(t, ';', pc.Delimiter)
	assert.Equal(t, int64(1024), pc.MaxBytes)
	assert.Equal(t, "windows-874", pc.LegacyEncoding)
	assert.NotEmpty(t, pc.Schema.Columns)
}

func TestApplication_Routes(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	require.NoError(t, app.Preload(context.Background()))

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantContains string
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantContains: `"ok"`},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK, wantContains: "serving sample"},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK, wantContains: Version},
		{name: "metadata", method: http.MethodGet, path: "/api/inventory", wantStatus: http.StatusOK, wantContains: `"is_sample":true`},
		{name: "summary", method: http.MethodGet, path: "/api/inventory/summary", wantStatus: http.StatusOK, wantContains: `"greenPercentage":79`},
		{name: "export", method: http.MethodGet, path: "/api/inventory/export?kind=summary", wantStatus: http.StatusOK, wantContains: "greenPercentage,79"},
		{name: "prometheus", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantContains: "go_goroutines"},
		{name: "websocket stats", method: http.MethodGet, path: "/api/metrics/websocket", wantStatus: http.StatusOK, wantContains: "active_clients"},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound, wantContains: apierrors.TypeNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/inventory/records", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, app.Router, tt.method, tt.path, nil, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantContains != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContains)
			}
		})
	}
}

func TestApplication_MiddlewareHeaders(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	require.NoError(t, app.Preload(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/records", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestApplication_CompressesAPIResponses(t *testing.T) {
	app, _ := newTestApp(t, testConfig())
	require.NoError(t, app.Preload(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/records", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"success"`)
}

func TestApplication_UploadReplacesDataset(t *testing.T) {
	app, logs := newTestApp(t, testConfig())
	require.NoError(t, app.Preload(context.Background()))

	body, contentType := uploadBody(t, "report.csv", reportCSV)
	rec := serve(t, app.Router, http.MethodPost, "/api/inventory/upload", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ds, err := app.Inventory.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "report.csv", ds.Source)
	assert.Equal(t, 2, ds.Len())
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset replaced")

	rec = serve(t, app.Router, http.MethodPost, "/api/inventory/sample", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ds, err = app.Inventory.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.IsSample())
}

func TestApplication_UploadContentType(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	rec := serve(t, app.Router, http.MethodPost, "/api/inventory/upload",
		bytes.NewBufferString(reportCSV), "text/csv")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplication_UploadRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.RPS = 0.01
	cfg.Security.RateLimit.Burst = 1
	app, _ := newTestApp(t, cfg)

	rec := serve(t, app.Router, http.MethodPost, "/api/inventory/sample", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, app.Router, http.MethodPost, "/api/inventory/sample", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited
	rec = serve(t, app.Router, http.MethodGet, "/api/inventory/records", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_Preload(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(report, []byte(reportCSV), 0o644))

	tests := []struct {
		name        string
		preloadFile string
		loadSample  bool
		wantErr     bool
		wantSource  string
		wantEmpty   bool
	}{
		{name: "preload file", preloadFile: report, loadSample: true, wantSource: "report.csv"},
		{name: "sample only", loadSample: true, wantSource: inventory.SampleSource},
		{name: "missing file falls back to sample", preloadFile: filepath.Join(dir, "missing.csv"), loadSample: true, wantSource: inventory.SampleSource},
		{name: "missing file without sample", preloadFile: filepath.Join(dir, "missing.csv"), wantErr: true},
		{name: "nothing configured", wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Dataset.PreloadFile = tt.preloadFile
			cfg.Dataset.LoadSample = tt.loadSample
			app, _ := newTestApp(t, cfg)

			err := app.Preload(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			ds, err := app.Inventory.Current(context.Background())
			if tt.wantEmpty {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, ds.Source)
		})
	}
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	app, logs := newTestApp(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	header := http.Header{"Origin": []string{"http://localhost:8080"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(baseURL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, greeting, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(greeting), string(events.MessageTypeConnection))

	body, contentType := uploadBody(t, "report.csv", reportCSV)
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/inventory/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type events.MessageType     `json:"type"`
		Data events.DatasetReplaced `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, events.MessageTypeDatasetReplaced, msg.Type)
	assert.Equal(t, "report.csv", msg.Data.Dataset.Source)
	assert.Equal(t, float64(10), msg.Data.Summary.TotalPerson)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not shut down")
	}
	assert.True(t, logs.ContainsMessage("Application shutdown complete"))
}
