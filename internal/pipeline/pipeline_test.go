package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/observability"
	"github.com/couchcryptid/envmon-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	airReading     = `{"id":"TPE001","name":"台北市","county":"台北市","district":"中正區","latitude":25.0330,"longitude":121.5654,"aqi":85,"status":"moderate","pollutants":{"pm25":35,"pm10":55},"timestamp":"2024-08-15T10:00:00Z"}`
	waterReading   = `{"id":"WQ001","name":"淡水河","location":"台北市","latitude":25.1669,"longitude":121.4316,"waterQualityIndex":6.5,"parameters":{"ph":7.2,"dissolvedOxygen":5.8,"bod":3.2,"suspendedSolids":15.3,"ammoniaNitrogen":2.1}}`
	stationReading = `{"id":"ST002","name":"高雄站","county":"高雄市","status":"maintenance","lastUpdate":"2024-09-03T08:00:00Z","dataQuality":0}`
)

var testProcessedAt = time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type failingExtractor struct {
	calls atomic.Int64
}

func (f *failingExtractor) ExtractBatch(context.Context, int) ([]domain.RawEvent, error) {
	f.calls.Add(1)
	return nil, errors.New("broker unavailable")
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{
		Key:     raw.Key,
		Value:   raw.Value,
		Headers: map[string]string{pipeline.HeaderRecordKind: "air"},
	}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) events() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

type stubGeocoder struct {
	forward domain.GeocodingResult
	err     error
}

func (s *stubGeocoder) ForwardGeocode(context.Context, string, string) (domain.GeocodingResult, error) {
	return s.forward, s.err
}

func (s *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{}, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testProcessedAt))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func rawEvent(key, value string) domain.RawEvent {
	return domain.RawEvent{
		Key:   []byte(key),
		Value: []byte(value),
		Topic: "raw-station-readings",
	}
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- pipeline ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := rawEvent("TPE001", airReading)
	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	runFor(t, p, 200*time.Millisecond)

	loaded := ldr.events()
	require.Len(t, loaded, 1)
	assert.Equal(t, raw.Value, loaded[0].Value)
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RecordsNormalized.WithLabelValues("air")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.events())
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int64
	raw := rawEvent("bad", `{`)
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, discardLogger(), metrics, 10)

	runFor(t, p, 200*time.Millisecond)

	assert.Empty(t, ldr.events())
	assert.Equal(t, int64(1), commits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TransformErrors), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var committed []int64
	var mu sync.Mutex
	batch := make([]domain.RawEvent, 3)
	for i := range batch {
		batch[i] = rawEvent("k", airReading)
		batch[i].Offset = int64(i)
		batch[i].Commit = func(context.Context) error {
			mu.Lock()
			committed = append(committed, int64(i))
			mu.Unlock()
			return nil
		}
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, 200*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{0, 1, 2}, committed)
	assert.Len(t, ldr.events(), 3)
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	var commits atomic.Int64
	raw := rawEvent("TPE001", airReading)
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("sink unavailable")}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	runFor(t, p, 100*time.Millisecond)

	assert.Zero(t, commits.Load())
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &failingExtractor{}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	// 200ms then 400ms: within 500ms there is room for at most three attempts.
	runFor(t, p, 500*time.Millisecond)

	calls := ext.calls.Load()
	assert.GreaterOrEqual(t, calls, int64(2))
	assert.LessOrEqual(t, calls, int64(3))
}

// --- transformer ---

func decodeRecord(t *testing.T, out domain.OutputEvent) domain.Record {
	t.Helper()
	var rec domain.Record
	require.NoError(t, json.Unmarshal(out.Value, &rec))
	return rec
}

func TestRecordTransformer_Air(t *testing.T) {
	freezeClock(t)
	tfm := pipeline.NewTransformer(nil, discardLogger())

	out, err := tfm.Transform(context.Background(), rawEvent("ignored", airReading))
	require.NoError(t, err)

	assert.Equal(t, []byte("TPE001"), out.Key)
	assert.Equal(t, "air", out.Headers[pipeline.HeaderRecordKind])
	assert.Equal(t, "2024-08-15T12:00:00Z", out.Headers[pipeline.HeaderProcessedAt])

	rec := decodeRecord(t, out)
	assert.Equal(t, domain.KindAir, rec.Kind)
	assert.Equal(t, "台北市", rec.Region)
	assert.Equal(t, domain.AQIModerate.Code, rec.Level.Code)
	require.NotNil(t, rec.Coordinates)
	assert.InDelta(t, 25.0330, rec.Coordinates.Lat, 1e-9)
	assert.Empty(t, rec.GeoSource)
}

func TestRecordTransformer_DetectsKindFromShape(t *testing.T) {
	freezeClock(t)
	tfm := pipeline.NewTransformer(nil, discardLogger())

	tests := []struct {
		name  string
		value string
		kind  string
	}{
		{"water", waterReading, "water"},
		{"station", stationReading, "station"},
		{"unknown", `{"id":"X1","county":"臺中市"}`, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tfm.Transform(context.Background(), rawEvent("", tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, out.Headers[pipeline.HeaderRecordKind])
		})
	}
}

func TestRecordTransformer_HeaderOverridesShape(t *testing.T) {
	freezeClock(t)
	tfm := pipeline.NewTransformer(nil, discardLogger())

	raw := rawEvent("", `{"id":"ST009","name":"臺中站","county":"臺中市","status":"online"}`)
	raw.Headers = map[string]string{pipeline.HeaderRecordKind: "station"}

	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	rec := decodeRecord(t, out)
	assert.Equal(t, domain.KindStation, rec.Kind)
	assert.Equal(t, "unknown", rec.StationType)
	assert.Equal(t, "station", out.Headers[pipeline.HeaderRecordKind])
}

func TestRecordTransformer_KeepsMessageKeyWithoutID(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, discardLogger())

	out, err := tfm.Transform(context.Background(), rawEvent("partition-key", `{"aqi":50}`))
	require.NoError(t, err)
	assert.Equal(t, []byte("partition-key"), out.Key)
}

func TestRecordTransformer_Errors(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, discardLogger())

	_, err := tfm.Transform(context.Background(), rawEvent("", `not json`))
	require.Error(t, err)

	_, err = tfm.Transform(context.Background(), rawEvent("", `null`))
	require.ErrorIs(t, err, pipeline.ErrEmptyReading)
}

func TestRecordTransformer_ForwardGeocoding(t *testing.T) {
	freezeClock(t)
	geo := &stubGeocoder{forward: domain.GeocodingResult{
		Lat:              22.6273,
		Lng:              120.3014,
		FormattedAddress: "高雄市, 臺灣",
		PlaceName:        "高雄市",
		Confidence:       0.9,
	}}
	tfm := pipeline.NewTransformer(geo, discardLogger())

	out, err := tfm.Transform(context.Background(), rawEvent("", stationReading))
	require.NoError(t, err)

	rec := decodeRecord(t, out)
	require.NotNil(t, rec.Coordinates)
	assert.InDelta(t, 22.6273, rec.Coordinates.Lat, 1e-9)
	assert.Equal(t, domain.GeoSourceForward, rec.GeoSource)
	assert.Equal(t, "高雄市, 臺灣", rec.Address)
}

func TestRecordTransformer_GeocodingFailureKeepsRecord(t *testing.T) {
	freezeClock(t)
	tfm := pipeline.NewTransformer(&stubGeocoder{err: errors.New("timeout")}, discardLogger())

	out, err := tfm.Transform(context.Background(), rawEvent("", airReading))
	require.NoError(t, err)

	rec := decodeRecord(t, out)
	assert.Equal(t, domain.GeoSourceFailed, rec.GeoSource)
	require.NotNil(t, rec.Coordinates)
}
