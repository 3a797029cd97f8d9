package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/envmon-service/internal/adapter/http"
	"github.com/couchcryptid/envmon-service/internal/adapter/mock"
	"github.com/couchcryptid/envmon-service/internal/config"
	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/observability"
	"github.com/couchcryptid/envmon-service/internal/query"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingSource struct{}

func (failingSource) Get(context.Context, string, query.Params) (query.Response, error) {
	return query.Response{}, errors.New("connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{HTTPAddr: ":0", CORSAllowedOrigins: []string{"http://localhost:5173"}}
}

func mockSource(t *testing.T) query.DataSource {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	src, err := mock.New(discardLogger(),
		mock.WithDelay(0),
		mock.WithClock(clockwork.NewFakeClockAt(testNow)),
		mock.WithSeed(42),
	)
	require.NoError(t, err)
	return src
}

func newServer(t *testing.T, src query.DataSource, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	services := query.NewServices(src, discardLogger())
	srv := httpadapter.NewServer(testConfig(), services, &mockReadiness{err: readyErr}, metrics, discardLogger())
	return srv, metrics
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	srv, _ := newServer(t, mockSource(t), readyErr)
	return srv
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// envelope decodes the façade result with its data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Message string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func recordIDs(t *testing.T, data json.RawMessage) []string {
	t.Helper()
	var records []domain.Record
	require.NoError(t, json.Unmarshal(data, &records))
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// --- health ---

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(t, fmt.Errorf("not ready yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- dashboard API ---

func TestAirQuality(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/v1/air-quality", []string{"TPE001", "TPH001", "TXG001", "KHH001"}},
		{"/api/v1/air-quality?county=" + url.QueryEscape("高雄市"), []string{"KHH001"}},
		{"/api/v1/air-quality?site=" + url.QueryEscape("台中市"), []string{"TXG001"}},
		{"/api/v1/air-quality?county=" + url.QueryEscape("花蓮縣"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			env := decode(t, rec)
			assert.True(t, env.Success)
			assert.Equal(t, tt.want, recordIDs(t, env.Data))
			assert.Equal(t, len(tt.want), env.Total)
		})
	}
}

func TestAirQuality_Aggregates(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, target := range []string{
		"/api/v1/air-quality/stations",
		"/api/v1/air-quality/summary",
		"/api/v1/air-quality/statistics",
		"/api/v1/air-quality/trends",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			require.Equal(t, http.StatusOK, rec.Code)
			env := decode(t, rec)
			assert.True(t, env.Success)
			assert.NotEqual(t, "null", string(env.Data))
		})
	}
}

func TestWaterQuality(t *testing.T) {
	srv := newTestServer(t, nil)

	env := decode(t, get(t, srv, "/api/v1/water-quality"))
	assert.Equal(t, []string{"WQ001", "WQ002"}, recordIDs(t, env.Data))

	env = decode(t, get(t, srv, "/api/v1/water-quality?county="+url.QueryEscape("高雄")))
	assert.Equal(t, []string{"WQ002"}, recordIDs(t, env.Data))

	rec := get(t, srv, "/api/v1/water-quality/rivers")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups map[string][]domain.Record
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &groups))
	assert.Contains(t, groups, "淡水河")
	assert.Contains(t, groups, "愛河")
}

func TestWaste(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, target := range []string{"/api/v1/waste", "/api/v1/waste/monthly", "/api/v1/waste/regions", "/api/v1/waste/regions/summary"} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, decode(t, rec).Success)
		})
	}
}

func TestStations(t *testing.T) {
	srv := newTestServer(t, nil)

	env := decode(t, get(t, srv, "/api/v1/stations"))
	assert.Equal(t, []string{"ST001", "ST002"}, recordIDs(t, env.Data))

	env = decode(t, get(t, srv, "/api/v1/stations?type=water_quality"))
	assert.Empty(t, recordIDs(t, env.Data))

	env = decode(t, get(t, srv, "/api/v1/stations/ST002"))
	assert.Equal(t, []string{"ST002"}, recordIDs(t, env.Data))
	var details []query.StationDetail
	require.NoError(t, json.Unmarshal(env.Data, &details))
	require.Len(t, details, 1)
	assert.Equal(t, "air", details[0].TypeInfo.Code)
	assert.Equal(t, 25, details[0].Validation.Completeness)

	rec := get(t, srv, "/api/v1/stations/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.StationStatistics
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.OnlineCount)
}

func TestStations_Nearest(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/api/v1/stations/nearest?lat=22.62&lng=120.31&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var nearby []domain.NearbyRecord
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &nearby))
	require.Len(t, nearby, 2)
	assert.Equal(t, "WQ002", nearby[0].ID)
	assert.Equal(t, "KHH001", nearby[1].ID)
	assert.LessOrEqual(t, nearby[0].DistanceKm, nearby[1].DistanceKm)
}

func TestStations_NearestBadRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, target := range []string{
		"/api/v1/stations/nearest",
		"/api/v1/stations/nearest?lat=abc&lng=120",
		"/api/v1/stations/nearest?lat=95&lng=120",
		"/api/v1/stations/nearest?lat=22.6&lng=120.3&limit=0",
		"/api/v1/stations/nearest?lat=22.6&lng=120.3&limit=500",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, decode(t, rec).Success)
		})
	}
}

func TestOverview(t *testing.T) {
	srv := newTestServer(t, nil)

	env := decode(t, get(t, srv, "/api/v1/noise"))
	assert.Equal(t, 2, env.Total)

	env = decode(t, get(t, srv, "/api/v1/indicators"))
	var ind query.Indicators
	require.NoError(t, json.Unmarshal(env.Data, &ind))
	assert.InDelta(t, 72.5, ind.OverallScore, 1e-9)
}

func TestSourceFailureReturns502(t *testing.T) {
	srv, metrics := newServer(t, failingSource{}, nil)

	rec := get(t, srv, "/api/v1/air-quality")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryRequests.WithLabelValues("air_quality", "error")), 0)
}

func TestQueryMetrics(t *testing.T) {
	srv, metrics := newServer(t, mockSource(t), nil)

	get(t, srv, "/api/v1/air-quality")
	get(t, srv, "/api/v1/air-quality?county="+url.QueryEscape("花蓮縣"))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryRequests.WithLabelValues("air_quality", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryRequests.WithLabelValues("air_quality", "empty")), 0)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/api/v1/stations")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	req.Header.Set("X-Request-ID", "dashboard-123")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "dashboard-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRouteReturns404(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/v1/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
