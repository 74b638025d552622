package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PacketPrism/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	seed := int64(1)
	cfg.Analysis.Seed = &seed
	registry := prometheus.NewRegistry()
	handler := NewHandler(cfg, registry)
	srv := httptest.NewServer(handler.Router(registry))
	t.Cleanup(srv.Close)
	return srv
}

func sampleCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("No.,Time,Source,Destination,Protocol,Length,Info\n")
	for i := 0; i < rows; i++ {
		proto := "TCP"
		if i%3 == 0 {
			proto = "DNS"
		}
		fmt.Fprintf(&sb, "%d,%.3f,192.168.1.%d,10.0.0.1,%s,%d,ok\n",
			i+1, float64(i)*0.01, 2+i%4, proto, 60+i*13)
	}
	return sb.String()
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/analyze?clusters=3&min_packets=10", "text/csv",
		strings.NewReader(sampleCSV(30)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "run_id")
	assert.Contains(t, body, "summary")

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(30), summary["total_packets"])
	assert.Equal(t, float64(3), summary["num_clusters"])
}

func TestAnalyzeEndpoint_TooFewPackets(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/analyze", "text/csv",
		strings.NewReader(sampleCSV(5)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeEndpoint_BadParameters(t *testing.T) {
	srv := newTestServer(t)

	cases := []string{
		"clusters=25",
		"clusters=abc",
		"anomaly_threshold=2",
		"normalization=zscore",
	}
	for _, query := range cases {
		resp, err := http.Post(srv.URL+"/api/v1/analyze?"+query, "text/csv",
			strings.NewReader(sampleCSV(30)))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", query)
	}
}

func TestAnalyzeEndpoint_NotACaptureTable(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/analyze", "text/csv",
		strings.NewReader("name,age\nalice,30\n"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// One successful analysis so the counters move.
	resp, err := http.Post(srv.URL+"/api/v1/analyze?clusters=3&min_packets=10", "text/csv",
		strings.NewReader(sampleCSV(30)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "packetprism_packets_analyzed_total")
	assert.Contains(t, string(body), "packetprism_requests_total")
}
