package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fakes ---

type fakeRow struct {
	payload   []byte
	updatedAt time.Time
	err       error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	*(dest[1].(*time.Time)) = r.updatedAt
	return nil
}

type fakeBatchResults struct {
	execErr error
	execs   int
	closed  bool
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	return pgconn.NewCommandTag("INSERT 0 1"), b.execErr
}

func (b *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (b *fakeBatchResults) QueryRow() pgx.Row       { return fakeRow{err: errors.New("not implemented")} }
func (b *fakeBatchResults) Close() error {
	b.closed = true
	return nil
}

type fakeDB struct {
	rows    map[string]fakeRow
	execSQL []string
	execErr error
	batch   *pgx.Batch
	results *fakeBatchResults
	pingErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	row, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return f.results
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

// --- tests ---

func TestSource_Get(t *testing.T) {
	updated := time.Date(2024, 8, 15, 18, 0, 0, 0, time.FixedZone("CST", 8*3600))
	db := &fakeDB{rows: map[string]fakeRow{
		"/air-quality": {payload: []byte(`[{"id":"TPE001","aqi":85}]`), updatedAt: updated},
		"/broken":      {err: errors.New("conn reset")},
	}}
	src := &Source{db: db, logger: discardLogger()}

	t.Run("stored payload", func(t *testing.T) {
		resp, err := src.Get(context.Background(), "/air-quality", nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.JSONEq(t, `[{"id":"TPE001","aqi":85}]`, string(resp.Data))
		require.NotNil(t, resp.Timestamp)
		assert.Equal(t, time.UTC, resp.Timestamp.Location())
		assert.True(t, resp.Timestamp.Equal(updated))
	})

	t.Run("missing endpoint", func(t *testing.T) {
		resp, err := src.Get(context.Background(), "/noise-data", nil)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "無資料", resp.Message)
	})

	t.Run("database error", func(t *testing.T) {
		_, err := src.Get(context.Background(), "/broken", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/broken")
	})
}

func TestSource_Seed(t *testing.T) {
	results := &fakeBatchResults{}
	db := &fakeDB{results: results}
	src := &Source{db: db, logger: discardLogger()}

	err := src.Seed(context.Background(), map[string]json.RawMessage{
		"/air-quality":   json.RawMessage(`[]`),
		"/water-quality": json.RawMessage(`[]`),
	})
	require.NoError(t, err)
	require.NotNil(t, db.batch)
	assert.Equal(t, 2, db.batch.Len())
	assert.Equal(t, 2, results.execs)
	assert.True(t, results.closed)
}

func TestSource_SeedEmpty(t *testing.T) {
	db := &fakeDB{}
	src := &Source{db: db, logger: discardLogger()}

	require.NoError(t, src.Seed(context.Background(), nil))
	assert.Nil(t, db.batch)
}

func TestSource_SeedError(t *testing.T) {
	results := &fakeBatchResults{execErr: errors.New("constraint violation")}
	src := &Source{db: &fakeDB{results: results}, logger: discardLogger()}

	err := src.Seed(context.Background(), map[string]json.RawMessage{"/waste-statistics": json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.True(t, results.closed)
}

func TestSource_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	src := &Source{db: db, logger: discardLogger()}

	require.NoError(t, src.EnsureSchema(context.Background()))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "CREATE TABLE IF NOT EXISTS envmon_payloads")

	db.execErr = errors.New("permission denied")
	assert.Error(t, src.EnsureSchema(context.Background()))
}

func TestSource_CheckReadiness(t *testing.T) {
	db := &fakeDB{}
	src := &Source{db: db, logger: discardLogger()}
	assert.NoError(t, src.CheckReadiness(context.Background()))

	db.pingErr = errors.New("connection refused")
	assert.Error(t, src.CheckReadiness(context.Background()))
}
