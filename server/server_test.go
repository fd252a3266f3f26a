package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eivy/irgen/metrics"
)

type handlerFunc func(ctx context.Context, payload []byte) ([]string, error)

func (f handlerFunc) HandleRequest(ctx context.Context, payload []byte) ([]string, error) {
	return f(ctx, payload)
}

func echo(_ context.Context, payload []byte) ([]string, error) {
	if string(payload) == "bad" {
		return nil, errors.New("unsupported input")
	}
	return []string{string(payload)}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	srv := httptest.NewServer(NewServer(metrics.DefaultConfig(), handlerFunc(echo),
		WithCollector(collector),
		WithGatherer(registry),
	))
	t.Cleanup(srv.Close)
	return srv, collector
}

func decode(t *testing.T, resp *http.Response) response {
	t.Helper()
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestConvert(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/convert", "application/json", strings.NewReader(`{"input":"raw"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, response{Lines: []string{`{"input":"raw"}`}}, decode(t, resp))
}

func TestConvertError(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/convert", "application/json", strings.NewReader("bad"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, response{Error: "unsupported input"}, decode(t, resp))
}

func TestConvertMethod(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/convert")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
	decode(t, resp)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/convert", "application/json", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `irgen_api_requests_total{endpoint="/convert",status="200"} 1`)
}
