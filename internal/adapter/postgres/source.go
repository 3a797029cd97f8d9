// Package postgres serves dashboard payloads stored as JSONB, one row per
// endpoint, as a query.DataSource.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/envmon-service/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS envmon_payloads (
    endpoint   TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const getPayloadSQL = `
    SELECT payload, updated_at
    FROM envmon_payloads
    WHERE endpoint = $1
`

const upsertPayloadSQL = `
INSERT INTO envmon_payloads (endpoint, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (endpoint) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = NOW()`

// notFoundMessage is returned for endpoints with no stored payload.
const notFoundMessage = "無資料"

// querier is the subset of *pgxpool.Pool the source uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

// Source reads payloads from Postgres.
type Source struct {
	db     querier
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects a pool to databaseURL and verifies it with a ping.
func New(ctx context.Context, databaseURL string, logger *slog.Logger) (*Source, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Source{db: pool, pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Source) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the payload table if it does not exist.
func (s *Source) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get returns the stored payload for endpoint. A missing row is an
// unsuccessful response, not an error. Params are ignored; filtering
// happens in the query layer.
func (s *Source) Get(ctx context.Context, endpoint string, _ query.Params) (query.Response, error) {
	var (
		payload   []byte
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, getPayloadSQL, endpoint).Scan(&payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("no payload stored", "endpoint", endpoint)
		return query.Response{Success: false, Message: notFoundMessage, Data: json.RawMessage(`[]`)}, nil
	}
	if err != nil {
		return query.Response{}, fmt.Errorf("select payload %s: %w", endpoint, err)
	}

	updatedAt = updatedAt.UTC()
	return query.Response{
		Success:   true,
		Data:      payload,
		Timestamp: &updatedAt,
	}, nil
}

// Seed upserts payloads keyed by endpoint in one batch.
func (s *Source) Seed(ctx context.Context, payloads map[string]json.RawMessage) error {
	if len(payloads) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for endpoint, payload := range payloads {
		batch.Queue(upsertPayloadSQL, endpoint, []byte(payload))
	}

	res := s.db.SendBatch(ctx, batch)
	defer res.Close()

	for range payloads {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert payload: %w", err)
		}
	}

	s.logger.Info("seeded payloads", "count", len(payloads))
	return nil
}

// CheckReadiness pings the database.
func (s *Source) CheckReadiness(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}
