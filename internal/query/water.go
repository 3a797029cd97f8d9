package query

import (
	"context"
	"strings"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// WaterQuality answers river water-quality queries.
type WaterQuality struct {
	fetcher
}

// Rivers returns every reading that carries a river name, a location and a WQI.
func (w *WaterQuality) Rivers(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	return w.records(ctx, EndpointWaterQuality, params, domain.NormalizeWater, "name", "location", "waterQualityIndex")
}

// ByCounty returns readings whose location mentions county.
func (w *WaterQuality) ByCounty(ctx context.Context, county string, params Params) (Result[[]domain.Record], error) {
	res, err := w.records(ctx, EndpointWaterQuality, params, domain.NormalizeWater)
	if err != nil {
		return res, err
	}
	return filter(res, func(r domain.Record) bool { return county != "" && strings.Contains(r.Region, county) }), nil
}

// BySite returns readings from the monitoring site named site.
func (w *WaterQuality) BySite(ctx context.Context, site string, params Params) (Result[[]domain.Record], error) {
	res, err := w.records(ctx, EndpointWaterQuality, params, domain.NormalizeWater)
	if err != nil {
		return res, err
	}
	return filter(res, func(r domain.Record) bool { return r.Name == site }), nil
}

// Stations returns every water-quality reading without filtering.
func (w *WaterQuality) Stations(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	return w.records(ctx, EndpointWaterQuality, params, domain.NormalizeWater)
}

// GroupByRiver returns readings keyed by river name.
func (w *WaterQuality) GroupByRiver(ctx context.Context, params Params) (Result[map[string][]domain.Record], error) {
	return w.grouped(ctx, params, domain.ByName)
}

// GroupByLocation returns readings keyed by county.
func (w *WaterQuality) GroupByLocation(ctx context.Context, params Params) (Result[map[string][]domain.Record], error) {
	return w.grouped(ctx, params, domain.ByRegion)
}

func (w *WaterQuality) grouped(ctx context.Context, params Params, key func(domain.Record) string) (Result[map[string][]domain.Record], error) {
	res, err := w.Stations(ctx, params)
	if err != nil {
		return Result[map[string][]domain.Record]{}, err
	}
	return mapResult(res, func(records []domain.Record) map[string][]domain.Record {
		return domain.GroupBy(records, key)
	}), nil
}

// WaterStatistics summarizes the index and every parameter across readings.
// ParameterStatus classifies each parameter's mean; parameters without any
// reading are unknown.
type WaterStatistics struct {
	WQI             domain.Summary            `json:"wqi"`
	RPI             domain.Summary            `json:"rpi"`
	Rivers          map[string]RiverRPI       `json:"rivers"`
	Parameters      map[string]domain.Summary `json:"parameters"`
	ParameterStatus map[string]domain.Level   `json:"parameter_status"`
	Levels          map[string]int            `json:"levels"`
}

// RiverRPI is the River Pollution Index of one river and the level of its mean.
type RiverRPI struct {
	RPI   domain.Summary `json:"rpi"`
	Level domain.Level   `json:"level"`
}

var waterMetrics = []string{
	domain.MetricPH, domain.MetricDO, domain.MetricBOD, domain.MetricCOD,
	domain.MetricSS, domain.MetricNH3N, domain.MetricTP,
}

// Statistics summarizes WQI, RPI and parameters, classifies the RPI of each
// river, and counts readings per WQI level.
func (w *WaterQuality) Statistics(ctx context.Context, params Params) (Result[WaterStatistics], error) {
	res, err := w.Stations(ctx, params)
	if err != nil {
		return Result[WaterStatistics]{}, err
	}
	return mapResult(res, func(records []domain.Record) WaterStatistics {
		stats := WaterStatistics{
			WQI:             domain.Summarize(records, domain.MetricWQI),
			RPI:             domain.Summarize(records, domain.MetricRPI),
			Rivers:          make(map[string]RiverRPI),
			Parameters:      make(map[string]domain.Summary, len(waterMetrics)),
			ParameterStatus: make(map[string]domain.Level, len(waterMetrics)),
			Levels:          make(map[string]int),
		}
		for river, readings := range domain.GroupBy(records, domain.ByName) {
			stats.Rivers[river] = riverRPI(readings)
		}
		for _, m := range waterMetrics {
			summary := domain.Summarize(records, m)
			stats.Parameters[m] = summary
			stats.ParameterStatus[m] = domain.ClassifyValue(m, summaryMean(summary))
		}
		for _, r := range records {
			stats.Levels[r.Level.Code]++
		}
		return stats
	}), nil
}

func riverRPI(readings []domain.Record) RiverRPI {
	summary := domain.Summarize(readings, domain.MetricRPI)
	return RiverRPI{RPI: summary, Level: domain.ClassifyValue(domain.MetricRPI, summaryMean(summary))}
}

// summaryMean returns nil for a summary over no readings.
func summaryMean(s domain.Summary) *float64 {
	if s.Count == 0 {
		return nil
	}
	mean := s.Mean
	return &mean
}
