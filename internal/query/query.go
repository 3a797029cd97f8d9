// Package query composes the normalizer and aggregation engine over records
// fetched from a DataSource. Each call fetches, normalizes and aggregates
// its own result set; nothing is cached or shared between calls.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// ErrMalformedPayload is returned when a successful response carries data
// that cannot be decoded into the endpoint's shape.
var ErrMalformedPayload = errors.New("malformed payload")

// Services groups the per-domain query services over one data source.
type Services struct {
	Air      *AirQuality
	Water    *WaterQuality
	Waste    *Waste
	Stations *Stations
	Overview *Overview
}

// NewServices wires every query service to source.
func NewServices(source DataSource, logger *slog.Logger) *Services {
	return &Services{
		Air:      &AirQuality{fetcher: newFetcher(source, logger, "air_quality")},
		Water:    &WaterQuality{fetcher: newFetcher(source, logger, "water_quality")},
		Waste:    &Waste{fetcher: newFetcher(source, logger, "waste")},
		Stations: &Stations{fetcher: newFetcher(source, logger, "stations")},
		Overview: &Overview{fetcher: newFetcher(source, logger, "overview")},
	}
}

// fetcher is the data-source access shared by every service.
type fetcher struct {
	source DataSource
	logger *slog.Logger
}

func newFetcher(source DataSource, logger *slog.Logger, domainName string) fetcher {
	return fetcher{source: source, logger: logger.With("domain", domainName)}
}

// get calls the data source. Failures are logged and returned wrapped.
func (f fetcher) get(ctx context.Context, endpoint string, params Params) (Response, error) {
	resp, err := f.source.Get(ctx, endpoint, params)
	if err != nil {
		f.logger.Error("data source request failed", "endpoint", endpoint, "error", err)
		return Response{}, fmt.Errorf("get %s: %w", endpoint, err)
	}
	return resp, nil
}

// raws fetches endpoint and decodes its data as an array of raw records.
// A false ok means the source reported no data; resp then carries the message.
func (f fetcher) raws(ctx context.Context, endpoint string, params Params) (raws []domain.RawRecord, resp Response, ok bool, err error) {
	resp, err = f.get(ctx, endpoint, params)
	if err != nil || !resp.Success {
		return nil, resp, false, err
	}
	if isEmptyPayload(resp.Data) {
		return nil, resp, true, nil
	}
	raws, err = domain.DecodeRawRecords(resp.Data)
	if err != nil {
		f.logger.Error("decode payload failed", "endpoint", endpoint, "error", err)
		return nil, resp, false, fmt.Errorf("%s: %w: %w", endpoint, ErrMalformedPayload, err)
	}
	return raws, resp, true, nil
}

// object fetches endpoint and decodes its data into v.
func (f fetcher) object(ctx context.Context, endpoint string, params Params, v any) (resp Response, ok bool, err error) {
	resp, err = f.get(ctx, endpoint, params)
	if err != nil || !resp.Success {
		return resp, false, err
	}
	if isEmptyPayload(resp.Data) {
		return resp, true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		f.logger.Error("decode payload failed", "endpoint", endpoint, "error", err)
		return resp, false, fmt.Errorf("%s: %w: %w", endpoint, ErrMalformedPayload, err)
	}
	return resp, true, nil
}

// records fetches endpoint, drops raw rows missing any required field and
// normalizes the rest.
func (f fetcher) records(ctx context.Context, endpoint string, params Params, normalize func(domain.RawRecord) *domain.Record, required ...string) (Result[[]domain.Record], error) {
	raws, resp, ok, err := f.raws(ctx, endpoint, params)
	if err != nil {
		return Result[[]domain.Record]{}, err
	}
	if !ok {
		return failedList[domain.Record](resp), nil
	}
	if len(required) > 0 {
		raws = domain.FilterValid(raws, required...)
	}
	return succeedList(normalizeEach(raws, normalize), resp.Message), nil
}

func isEmptyPayload(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// filter keeps the records matching keep and recomputes Total.
func filter(res Result[[]domain.Record], keep func(domain.Record) bool) Result[[]domain.Record] {
	if !res.Success {
		return res
	}
	out := make([]domain.Record, 0, len(res.Data))
	for _, r := range res.Data {
		if keep(r) {
			out = append(out, r)
		}
	}
	res.Data = out
	res.Total = len(out)
	return res
}

// mapResult derives a new payload from a successful result, keeping the
// envelope. Failures pass through with a zero payload.
func mapResult[T, U any](res Result[T], fn func(T) U) Result[U] {
	out := Result[U]{Success: res.Success, Total: res.Total, Message: res.Message}
	if res.Success {
		out.Data = fn(res.Data)
	}
	return out
}
