package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// Message headers set on every canonical record and honoured on raw readings.
const (
	HeaderRecordKind  = "record_kind"
	HeaderProcessedAt = "processed_at"
)

// kindUnknownLabel is the header value for records whose kind could not be inferred.
const kindUnknownLabel = "unknown"

// ErrEmptyReading is returned for a message whose payload is JSON null.
var ErrEmptyReading = errors.New("empty reading")

// RecordTransformer normalizes raw station readings into canonical records,
// optionally enriching them with geocoding.
type RecordTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a RecordTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *RecordTransformer {
	return &RecordTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Transform decodes, normalizes and serializes one reading. The kind comes
// from the record_kind header when it names a known network, otherwise from
// the payload shape. Only undecodable payloads fail; malformed fields are
// defaulted by the normalizer.
func (t *RecordTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	rawRec, err := domain.DecodeRawRecord(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	if rawRec == nil {
		return domain.OutputEvent{}, ErrEmptyReading
	}

	kind := domain.ParseKind(raw.Headers[HeaderRecordKind])
	if kind == domain.KindUnknown {
		kind = domain.DetectKind(rawRec)
	}

	rec := *domain.NormalizeAs(kind, rawRec)
	rec = domain.EnrichWithGeocoding(ctx, rec, t.geocoder, t.logger)

	value, err := json.Marshal(rec)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("marshal record: %w", err)
	}

	key := raw.Key
	if rec.ID != "" {
		key = []byte(rec.ID)
	}

	label := string(rec.Kind)
	if rec.Kind == domain.KindUnknown {
		label = kindUnknownLabel
	}

	return domain.OutputEvent{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderRecordKind:  label,
			HeaderProcessedAt: rec.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
