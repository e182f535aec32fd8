package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keksindex/internal/config"
	"keksindex/pkg/contracts/domain"
	"keksindex/pkg/contracts/events"
)

const testCSV = `date,geo_label,coicop,y
2020m01,Deutschland,CP01112,100
2020m01,Deutschland,CP01151,104
2020m02,Deutschland,CP01112,101
2020m02,Deutschland,CP01151,:
2020m01,Österreich,CP01112,98
bad,Österreich,CP01112,98
`

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.SourcePath = source
	cfg.Data.Preload = false
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	cfg.Security.AllowedOrigins = nil
	return cfg
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prc_hicp_midx.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	application, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	if application.WebSocketHub != nil {
		application.WebSocketHub.Start()
		t.Cleanup(application.WebSocketHub.Stop)
	}

	server := httptest.NewServer(application.Router)
	t.Cleanup(server.Close)
	return application, server
}

func get(t *testing.T, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestApplication_DashboardFlow(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, writeSource(t, testCSV)))

	resp, _ := get(t, server.URL+"/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body := get(t, server.URL+"/api/v1/regions")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"regions":["Deutschland","Österreich"],"count":2}`, string(body))

	resp, _ = get(t, server.URL+"/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, server.URL+"/api/v1/dashboard?recipe=Butterkekse&region=Deutschland")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var dashboard domain.Dashboard
	require.NoError(t, json.Unmarshal(body, &dashboard))
	assert.False(t, dashboard.Empty)
	assert.Len(t, dashboard.Composite, 2)
	assert.Len(t, dashboard.Proportions, 5)
	// flour 300 and butter 200 of 652 in January
	assert.InDelta(t, (300*100+200*104)/652.0, dashboard.Composite[0].Value, 1e-9)

	resp, body = get(t, server.URL+"/api/v1/dashboard?recipe=Butterkekse&region=Atlantis")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &dashboard))
	assert.True(t, dashboard.Empty)
	assert.NotEmpty(t, dashboard.Notice)

	resp, _ = get(t, server.URL+"/api/v1/dashboard?recipe=Spekulatius&region=Deutschland")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, server.URL+"/api/v1/dashboard?region=Deutschland")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, server.URL+"/api/v1/recipes/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, server.URL+"/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplication_ExportAndCharts(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, writeSource(t, testCSV)))

	resp, body := get(t, server.URL+"/api/v1/export?region=Deutschland&format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "keksindex_deutschland_alle.csv")
	assert.Contains(t, string(body), "Butterkekse,Deutschland,2020-01,recipe_index")

	resp, body = get(t, server.URL+"/api/v1/charts/composite.png?recipe=Butterkekse&region=Deutschland&width=300&height=200")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))
}

func TestApplication_MissingSource(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, filepath.Join(t.TempDir(), "missing.csv")))

	resp, body := get(t, server.URL+"/api/v1/regions")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, string(body))

	resp, _ = get(t, server.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplication_BadSchema(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, writeSource(t, "date,geo_label,y\n2020m01,Deutschland,100\n")))

	resp, body := get(t, server.URL+"/api/v1/regions")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "/errors/data/schema")
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, writeSource(t, testCSV)))

	resp, _ := get(t, server.URL+"/api/v1/regions")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, server.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "series_store_loads_total")
}

func TestApplication_ReloadBroadcastsOverWebSocket(t *testing.T) {
	_, server := newTestApp(t, testConfig(t, writeSource(t, testCSV)))

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(server.URL+"/api/v1/store/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg struct {
			Type events.MessageType `json:"type"`
			Data json.RawMessage    `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != events.MessageTypeStoreReloaded {
			continue
		}
		var payload events.StoreReloaded
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, 5, payload.Diagnostics.RowsKept)
		assert.Equal(t, 1, payload.Diagnostics.DroppedPeriod)
		return
	}
}

func TestApplication_WebSocketDisabled(t *testing.T) {
	cfg := testConfig(t, writeSource(t, testCSV))
	cfg.WebSocket.Enabled = false
	application, server := newTestApp(t, cfg)

	assert.Nil(t, application.WebSocketHub)
	resp, _ := get(t, server.URL+"/ws")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err := http.Post(server.URL+"/api/v1/store/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig(t, writeSource(t, testCSV))
	cfg.Data.Preload = true
	application, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, application.Start(ctx, cancel))
	assert.True(t, application.Services.Store.Loaded())
	require.NoError(t, application.Stop(ctx))
}

func TestNew_InvalidRecipesFile(t *testing.T) {
	cfg := testConfig(t, writeSource(t, testCSV))
	cfg.Data.RecipesFile = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "failed to load recipes")
}
