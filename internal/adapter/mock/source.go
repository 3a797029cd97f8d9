// Package mock serves the static dashboard dataset as a query.DataSource,
// with an artificial response delay.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/envmon-service/internal/query"
	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the simulated network latency per request.
const DefaultDelay = 500 * time.Millisecond

// Option configures a Source.
type Option func(*Source)

// WithDelay sets the per-request delay. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *Source) { s.delay = d }
}

// WithClock sets the clock used for the delay and the dataset timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Source) { s.clock = c }
}

// WithSeed makes the generated trend series reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Source) {
		s.seed = seed
		s.seeded = true
	}
}

// Source is an in-memory data source. Payloads are built once in New and
// are read-only afterwards, so a Source is safe for concurrent use.
type Source struct {
	clock    clockwork.Clock
	delay    time.Duration
	seed     uint64
	seeded   bool
	logger   *slog.Logger
	payloads map[string]json.RawMessage
}

// New builds the dataset. Timestamps are relative to the clock's now.
func New(logger *slog.Logger, opts ...Option) (*Source, error) {
	s := &Source{
		clock:  clockwork.NewRealClock(),
		delay:  DefaultDelay,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seeded {
		s.seed = uint64(s.clock.Now().UnixNano())
	}

	payloads, err := buildPayloads(s.clock.Now(), rand.New(rand.NewPCG(s.seed, s.seed)))
	if err != nil {
		return nil, err
	}
	s.payloads = payloads
	return s, nil
}

func buildPayloads(now time.Time, rng *rand.Rand) (map[string]json.RawMessage, error) {
	data := map[string]any{
		query.EndpointAirQuality:    airStations(now),
		query.EndpointAirTrends:     trends(now, rng),
		query.EndpointWaterQuality:  waterStations(now),
		query.EndpointWaste:         waste(),
		query.EndpointStationStatus: stations(now),
		query.EndpointNoise:         noise(now),
		query.EndpointEnvIndicators: environmentalIndicators(),
	}

	payloads := make(map[string]json.RawMessage, len(data))
	for endpoint, v := range data {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", endpoint, err)
		}
		payloads[endpoint] = b
	}
	return payloads, nil
}

// Get waits for the configured delay, then returns the endpoint's payload.
// Unknown endpoints return an unsuccessful response, not an error.
func (s *Source) Get(ctx context.Context, endpoint string, params query.Params) (query.Response, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return query.Response{}, ctx.Err()
		case <-s.clock.After(s.delay):
		}
	}

	s.logger.Debug("mock request", "endpoint", endpoint, "params", params)

	payload, ok := s.payloads[endpoint]
	if !ok {
		return query.UnknownEndpoint(), nil
	}
	now := s.clock.Now().UTC()
	return query.Response{
		Success:   true,
		Message:   "Success",
		Data:      payload,
		Timestamp: &now,
		Version:   "v2",
	}, nil
}

// Payloads returns a copy of every endpoint payload, for fixtures and seeding.
func (s *Source) Payloads() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.payloads))
	for k, v := range s.payloads {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
