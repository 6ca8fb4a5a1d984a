package mcp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heefoo/treesitter-mcp/internal/config"
)

func newTestHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(ServerConfig{Config: config.DefaultConfig()})
	srv := &http.Server{}
	ts := httptest.NewServer(s.Handler("http://127.0.0.1", srv))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthHandler(t *testing.T) {
	s := NewServer(ServerConfig{Config: config.DefaultConfig()})

	healthReq := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	s.handleHealth(healthRec, healthReq)
	if healthRec.Code != http.StatusOK {
		t.Fatalf("expected health status 200, got %d", healthRec.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(healthRec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse health response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected health status 'ok', got %v", payload["status"])
	}
	langs, ok := payload["languages"].([]interface{})
	if !ok || len(langs) == 0 {
		t.Fatalf("expected languages in health response, got %v", payload["languages"])
	}
	if _, ok := payload["cache"]; !ok {
		t.Fatalf("expected cache stats with the default config")
	}
}

func TestSSEEndpoint(t *testing.T) {
	ts := newTestHTTPServer(t)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.URL + "/sse")
	if err != nil {
		t.Fatalf("failed to call /sse: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /sse status 200, got %d", resp.StatusCode)
	}

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("failed to read /sse response: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "event: endpoint") {
		t.Fatalf("expected /sse response to include endpoint event, got: %q", string(buf[:n]))
	}
}

func TestStreamableHTTPEndpoint(t *testing.T) {
	ts := newTestHTTPServer(t)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("failed to call /mcp: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /mcp status 200, got %d", resp.StatusCode)
	}
}

func TestHealthEndpointMounted(t *testing.T) {
	ts := newTestHTTPServer(t)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("failed to call /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /health status 200, got %d", resp.StatusCode)
	}
}
