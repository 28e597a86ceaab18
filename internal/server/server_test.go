package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/flowerclock/internal/analysis"
	"github.com/chrissnell/flowerclock/pkg/config"
	"github.com/chrissnell/flowerclock/pkg/render"
	"github.com/chrissnell/flowerclock/pkg/solar"
)

func newTestServer(t *testing.T) (*Server, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core).Sugar()

	cfg := config.Default()
	report, err := analysis.Analyze(cfg.Groups, logger)
	require.NoError(t, err)

	s, err := New(report, report.Chart(cfg, solar.Band{StartHour: 18, EndHour: 8}), logger)
	require.NoError(t, err)
	return s, logs
}

func TestServeSVG(t *testing.T) {
	s, logs := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clock.svg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ">06:11</text>")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/clock.svg", entries[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestServeSummary(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Groups []struct {
			Name     string  `json:"name"`
			MeanTime string  `json:"mean_time"`
			R        float64 `json:"resultant_length"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Groups, 3)
	assert.Equal(t, "hybrid", body.Groups[2].Name)
	assert.Equal(t, "23:55", body.Groups[2].MeanTime)
	assert.Greater(t, body.Groups[2].R, 0.99)
}

func TestServeIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<img src="/clock.svg"`)
	assert.Contains(t, body, "19:15")
	assert.Equal(t, 3, strings.Count(body, "<td style="))
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRejectsInvalidChart(t *testing.T) {
	_, err := New(&analysis.Report{}, render.Chart{Size: 600, TickHours: 2}, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, render.ErrNoSeries)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/summary")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
