package query

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// AirQuality answers air-quality station queries.
type AirQuality struct {
	fetcher
}

// Current returns the latest readings of every station that reports a
// name, a county and an AQI.
func (a *AirQuality) Current(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	return a.records(ctx, EndpointAirQuality, params, domain.NormalizeAir, "name", "county", "aqi")
}

// ByCounty returns the stations in county.
func (a *AirQuality) ByCounty(ctx context.Context, county string, params Params) (Result[[]domain.Record], error) {
	res, err := a.records(ctx, EndpointAirQuality, params, domain.NormalizeAir)
	if err != nil {
		return res, err
	}
	return filter(res, func(r domain.Record) bool { return r.Region == county }), nil
}

// BySite returns the stations named site.
func (a *AirQuality) BySite(ctx context.Context, site string, params Params) (Result[[]domain.Record], error) {
	res, err := a.records(ctx, EndpointAirQuality, params, domain.NormalizeAir)
	if err != nil {
		return res, err
	}
	return filter(res, func(r domain.Record) bool { return r.Name == site }), nil
}

// Stations returns every air-quality station without filtering.
func (a *AirQuality) Stations(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	return a.records(ctx, EndpointAirQuality, params, domain.NormalizeAir)
}

// GroupByCounty returns the stations keyed by county.
func (a *AirQuality) GroupByCounty(ctx context.Context, params Params) (Result[map[string][]domain.Record], error) {
	res, err := a.Stations(ctx, params)
	if err != nil {
		return Result[map[string][]domain.Record]{}, err
	}
	return mapResult(res, func(records []domain.Record) map[string][]domain.Record {
		return domain.GroupBy(records, domain.ByRegion)
	}), nil
}

// CountySummary is the AQI picture of one county.
type CountySummary struct {
	County     string         `json:"county"`
	AverageAQI int            `json:"average_aqi"`
	Level      domain.Level   `json:"level"`
	AQI        domain.Summary `json:"aqi"`
	Stations   int            `json:"stations"`
	LatestAt   *time.Time     `json:"latest_at"`
}

// CountySummaries averages AQI per county, sorted by county name. Counties
// where no station has a reading get the unknown level.
func (a *AirQuality) CountySummaries(ctx context.Context, params Params) (Result[[]CountySummary], error) {
	res, err := a.Stations(ctx, params)
	if err != nil {
		return Result[[]CountySummary]{}, err
	}
	if !res.Success {
		return Result[[]CountySummary]{Success: false, Data: []CountySummary{}, Message: res.Message}, nil
	}

	groups := domain.GroupBy(res.Data, domain.ByRegion)
	summaries := make([]CountySummary, 0, len(groups))
	for county, records := range groups {
		s := CountySummary{
			County:     county,
			AverageAQI: domain.RegionAverage(records),
			AQI:        domain.Summarize(records, domain.MetricAQI),
			Stations:   len(records),
			LatestAt:   domain.LatestTimestamp(records),
			Level:      domain.UnknownLevel,
		}
		if s.AQI.Count > 0 {
			s.Level = domain.AQILevel(float64(s.AverageAQI))
		}
		summaries = append(summaries, s)
	}
	slices.SortFunc(summaries, func(x, y CountySummary) int { return cmp.Compare(x.County, y.County) })
	return succeedList(summaries, res.Message), nil
}

// AirStatistics is the network-wide air-quality picture.
type AirStatistics struct {
	Levels     domain.LevelCounts        `json:"levels"`
	AQI        domain.Summary            `json:"aqi"`
	Pollutants map[string]domain.Summary `json:"pollutants"`
	LatestAt   *time.Time                `json:"latest_at"`
}

var pollutantMetrics = []string{
	domain.MetricPM25, domain.MetricPM10, domain.MetricO3,
	domain.MetricNO2, domain.MetricSO2, domain.MetricCO,
}

// Statistics counts stations per AQI band and summarizes every pollutant.
func (a *AirQuality) Statistics(ctx context.Context, params Params) (Result[AirStatistics], error) {
	res, err := a.Stations(ctx, params)
	if err != nil {
		return Result[AirStatistics]{}, err
	}
	return mapResult(res, func(records []domain.Record) AirStatistics {
		stats := AirStatistics{
			Levels:     domain.LevelDistribution(records),
			AQI:        domain.Summarize(records, domain.MetricAQI),
			Pollutants: make(map[string]domain.Summary, len(pollutantMetrics)),
			LatestAt:   domain.LatestTimestamp(records),
		}
		for _, m := range pollutantMetrics {
			stats.Pollutants[m] = domain.Summarize(records, m)
		}
		return stats
	}), nil
}

// DailyPoint is one day of network-average readings.
type DailyPoint struct {
	Date  string       `json:"date"`
	AQI   float64      `json:"aqi"`
	PM25  float64      `json:"pm25"`
	PM10  float64      `json:"pm10"`
	Level domain.Level `json:"level"`
}

// HourlyPoint is one hour of network-average readings.
type HourlyPoint struct {
	Hour  int          `json:"hour"`
	AQI   float64      `json:"aqi"`
	PM25  float64      `json:"pm25"`
	Level domain.Level `json:"level"`
}

// AirTrends holds the daily and hourly AQI series.
type AirTrends struct {
	Daily  []DailyPoint  `json:"daily"`
	Hourly []HourlyPoint `json:"hourly"`
}

// Trends returns the daily and hourly series with each point classified.
func (a *AirQuality) Trends(ctx context.Context, params Params) (Result[AirTrends], error) {
	var payload struct {
		Daily  []domain.RawRecord `json:"daily"`
		Hourly []domain.RawRecord `json:"hourly"`
	}
	resp, ok, err := a.object(ctx, EndpointAirTrends, params, &payload)
	if err != nil {
		return Result[AirTrends]{}, err
	}
	if !ok {
		return failed[AirTrends](resp), nil
	}

	trends := AirTrends{
		Daily:  make([]DailyPoint, 0, len(payload.Daily)),
		Hourly: make([]HourlyPoint, 0, len(payload.Hourly)),
	}
	for _, raw := range payload.Daily {
		if raw == nil {
			continue
		}
		p := DailyPoint{AQI: nonNegative(raw, "aqi"), PM25: nonNegative(raw, "pm25"), PM10: nonNegative(raw, "pm10")}
		p.Date, _ = raw.String("date")
		p.Level = trendLevel(raw)
		trends.Daily = append(trends.Daily, p)
	}
	for _, raw := range payload.Hourly {
		if raw == nil {
			continue
		}
		p := HourlyPoint{AQI: nonNegative(raw, "aqi"), PM25: nonNegative(raw, "pm25")}
		p.Hour, _ = raw.Int("hour")
		p.Level = trendLevel(raw)
		trends.Hourly = append(trends.Hourly, p)
	}
	return succeed(trends, len(trends.Daily)+len(trends.Hourly), resp.Message), nil
}

// trendLevel classifies a trend point's AQI. As with station readings, a
// missing or non-positive AQI is no reading and gets the unknown level.
func trendLevel(raw domain.RawRecord) domain.Level {
	aqi, ok := raw.Float("aqi")
	if !ok || aqi <= 0 {
		return domain.UnknownLevel
	}
	return domain.AQILevel(aqi)
}

func nonNegative(raw domain.RawRecord, key string) float64 {
	v, present := raw.Float(key)
	if !present || v < 0 {
		return 0
	}
	return v
}
