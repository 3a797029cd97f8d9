package mock

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/envmon-service/internal/query"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSource(t *testing.T, opts ...Option) *Source {
	t.Helper()
	base := []Option{WithDelay(0), WithClock(clockwork.NewFakeClockAt(testNow)), WithSeed(42)}
	src, err := New(discardLogger(), append(base, opts...)...)
	require.NoError(t, err)
	return src
}

func TestSource_ServesEveryEndpoint(t *testing.T) {
	src := newTestSource(t)

	for _, endpoint := range query.Endpoints {
		t.Run(endpoint, func(t *testing.T) {
			resp, err := src.Get(context.Background(), endpoint, nil)
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, "Success", resp.Message)
			assert.True(t, json.Valid(resp.Data))
		})
	}
}

func TestSource_UnknownEndpoint(t *testing.T) {
	src := newTestSource(t)

	resp, err := src.Get(context.Background(), "/radiation", nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "端點不存在", resp.Message)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestSource_AirStations(t *testing.T) {
	src := newTestSource(t)

	resp, err := src.Get(context.Background(), query.EndpointAirQuality, nil)
	require.NoError(t, err)

	var stations []airStation
	require.NoError(t, json.Unmarshal(resp.Data, &stations))
	require.Len(t, stations, 4)
	assert.Equal(t, "TPE001", stations[0].ID)
	assert.Equal(t, 105, stations[3].AQI)
	assert.Equal(t, "2024-08-15T10:00:00.000Z", stations[0].Timestamp)
}

func TestSource_TrendsAreSeeded(t *testing.T) {
	a := newTestSource(t)
	b := newTestSource(t)
	c := newTestSource(t, WithSeed(7))

	pa := a.Payloads()[query.EndpointAirTrends]
	assert.Equal(t, pa, b.Payloads()[query.EndpointAirTrends])
	assert.NotEqual(t, pa, c.Payloads()[query.EndpointAirTrends])

	var tr airTrends
	require.NoError(t, json.Unmarshal(pa, &tr))
	require.Len(t, tr.Daily, 30)
	require.Len(t, tr.Hourly, 24)
	assert.Equal(t, "2024-07-17", tr.Daily[0].Date)
	assert.Equal(t, "2024-08-15", tr.Daily[29].Date)
	for _, d := range tr.Daily {
		assert.GreaterOrEqual(t, d.AQI, 50)
		assert.Less(t, d.AQI, 100)
		assert.GreaterOrEqual(t, d.PM25, 20)
		assert.Less(t, d.PM25, 50)
	}
	for i, h := range tr.Hourly {
		assert.Equal(t, i, h.Hour)
		assert.GreaterOrEqual(t, h.AQI, 60)
		assert.Less(t, h.AQI, 90)
	}
}

func TestSource_Delay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	src, err := New(discardLogger(), WithClock(clock), WithDelay(DefaultDelay), WithSeed(1))
	require.NoError(t, err)

	done := make(chan query.Response, 1)
	go func() {
		resp, _ := src.Get(context.Background(), query.EndpointNoise, nil)
		done <- resp
	}()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	select {
	case <-done:
		t.Fatal("returned before the delay elapsed")
	default:
	}

	clock.Advance(DefaultDelay)
	select {
	case resp := <-done:
		assert.True(t, resp.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestSource_DelayHonoursCancellation(t *testing.T) {
	src, err := New(discardLogger(), WithClock(clockwork.NewFakeClockAt(testNow)), WithDelay(time.Hour), WithSeed(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Get(ctx, query.EndpointAirQuality, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_PayloadsAreCopies(t *testing.T) {
	src := newTestSource(t)

	p := src.Payloads()
	p[query.EndpointWaste][0] = 'X'

	resp, err := src.Get(context.Background(), query.EndpointWaste, nil)
	require.NoError(t, err)
	assert.True(t, json.Valid(resp.Data))
}
