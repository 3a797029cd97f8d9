package query

import (
	"cmp"
	"context"
	"slices"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// Waste answers waste-statistics queries.
type Waste struct {
	fetcher
}

// wastePayload is the shape of the waste endpoint. Counties is optional.
type wastePayload struct {
	Monthly  []domain.RawRecord `json:"monthly"`
	ByRegion []domain.RawRecord `json:"byRegion"`
	Counties []domain.RawRecord `json:"counties"`
}

// WasteStatistics is the full waste picture.
type WasteStatistics struct {
	Monthly        []domain.MonthlyWaste         `json:"monthly"`
	Regions        []domain.RegionalWaste        `json:"regions"`
	Counties       []domain.WasteRecord          `json:"counties,omitempty"`
	Summary        *domain.WasteSummary          `json:"summary,omitempty"`
	RecyclingTrend domain.TrendResult            `json:"recycling_trend"`
	CountyTrends   map[string]domain.TrendResult `json:"county_trends,omitempty"`
	Composition    []WasteShare                  `json:"composition"`
}

// WasteShare is one waste stream's share of the monthly series.
type WasteShare struct {
	Category domain.Category `json:"category"`
	Tonnage  float64         `json:"tonnage"`
	Share    float64         `json:"share"`
}

// Statistics returns monthly, regional and, when present, county yearly
// statistics. The recycling trend compares the two latest years.
func (w *Waste) Statistics(ctx context.Context, params Params) (Result[WasteStatistics], error) {
	payload, resp, ok, err := w.fetch(ctx, params)
	if err != nil {
		return Result[WasteStatistics]{}, err
	}
	if !ok {
		return failed[WasteStatistics](resp), nil
	}

	stats := WasteStatistics{
		Monthly:  normalizeEach(payload.Monthly, domain.NormalizeMonthlyWaste),
		Regions:  normalizeEach(payload.ByRegion, domain.NormalizeRegionalWaste),
		Counties: normalizeEach(payload.Counties, domain.NormalizeWaste),
	}
	stats.Summary = domain.SummarizeWaste(stats.Counties)
	stats.RecyclingTrend = yearlyRecyclingTrend(stats.Counties)
	stats.CountyTrends = countyRecyclingTrends(stats.Counties)
	stats.Composition = composition(stats.Monthly)
	if len(stats.Counties) == 0 {
		stats.Counties = nil
	}
	return succeed(stats, len(stats.Monthly)+len(stats.Regions)+len(stats.Counties), resp.Message), nil
}

// Monthly returns the national monthly series.
func (w *Waste) Monthly(ctx context.Context, params Params) (Result[[]domain.MonthlyWaste], error) {
	payload, resp, ok, err := w.fetch(ctx, params)
	if err != nil {
		return Result[[]domain.MonthlyWaste]{}, err
	}
	if !ok {
		return failedList[domain.MonthlyWaste](resp), nil
	}
	return succeedList(normalizeEach(payload.Monthly, domain.NormalizeMonthlyWaste), resp.Message), nil
}

// Regional returns the per-region totals and recycling rates.
func (w *Waste) Regional(ctx context.Context, params Params) (Result[[]domain.RegionalWaste], error) {
	payload, resp, ok, err := w.fetch(ctx, params)
	if err != nil {
		return Result[[]domain.RegionalWaste]{}, err
	}
	if !ok {
		return failedList[domain.RegionalWaste](resp), nil
	}
	return succeedList(normalizeEach(payload.ByRegion, domain.NormalizeRegionalWaste), resp.Message), nil
}

// ByRegion returns the regional rows for region.
func (w *Waste) ByRegion(ctx context.Context, region string, params Params) (Result[[]domain.RegionalWaste], error) {
	res, err := w.Regional(ctx, params)
	if err != nil || !res.Success {
		return res, err
	}
	out := make([]domain.RegionalWaste, 0, 1)
	for _, r := range res.Data {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return succeedList(out, res.Message), nil
}

// RegionalSummary rolls up every region.
type RegionalSummary struct {
	Regions          int          `json:"regions"`
	Total            float64      `json:"total"`
	AvgRecyclingRate float64      `json:"avg_recycling_rate"`
	Level            domain.Level `json:"level"`
	Best             string       `json:"best,omitempty"`
	Worst            string       `json:"worst,omitempty"`
}

// RegionalSummary totals tonnage across regions, averages the reported
// recycling rates and names the best and worst recycler.
func (w *Waste) RegionalSummary(ctx context.Context, params Params) (Result[RegionalSummary], error) {
	res, err := w.Regional(ctx, params)
	if err != nil {
		return Result[RegionalSummary]{}, err
	}
	return mapResult(res, summarizeRegions), nil
}

func summarizeRegions(regions []domain.RegionalWaste) RegionalSummary {
	s := RegionalSummary{Regions: len(regions), Level: domain.RecyclingLevel(0)}
	if len(regions) == 0 {
		return s
	}

	var rateSum float64
	for _, r := range regions {
		s.Total += r.Total
		rateSum += r.RecyclingRate
	}
	s.Total = domain.Round2(s.Total)
	s.AvgRecyclingRate = domain.Round2(rateSum / float64(len(regions)))
	s.Level = domain.RecyclingLevel(s.AvgRecyclingRate)

	byRate := func(a, b domain.RegionalWaste) int { return cmp.Compare(a.RecyclingRate, b.RecyclingRate) }
	s.Best = slices.MaxFunc(regions, byRate).Region
	s.Worst = slices.MinFunc(regions, byRate).Region
	return s
}

func (w *Waste) fetch(ctx context.Context, params Params) (wastePayload, Response, bool, error) {
	var payload wastePayload
	resp, ok, err := w.object(ctx, EndpointWaste, params, &payload)
	return payload, resp, ok, err
}

// yearlyRecyclingTrend aggregates counties per year and compares the
// overall recycling rate of the two latest years.
func yearlyRecyclingTrend(counties []domain.WasteRecord) domain.TrendResult {
	byYear := domain.GroupBy(counties, domain.WasteByYear)
	points := make([]domain.TrendPoint, 0, len(byYear))
	for year, records := range byYear {
		if s := domain.SummarizeWaste(records); s != nil {
			points = append(points, domain.TrendPoint{Year: year, Value: s.AvgRecyclingRate})
		}
	}
	return domain.Trend(points)
}

// countyRecyclingTrends compares each county's recycling rate across its
// two latest years. It returns nil without county rows.
func countyRecyclingTrends(counties []domain.WasteRecord) map[string]domain.TrendResult {
	if len(counties) == 0 {
		return nil
	}
	rate := func(w domain.WasteRecord) float64 { return w.RecyclingRate }
	out := make(map[string]domain.TrendResult)
	for county, records := range domain.GroupBy(counties, domain.WasteByCounty) {
		out[county] = domain.WasteTrend(records, rate)
	}
	return out
}

// composition splits the monthly tonnage into household, recyclable and
// organic streams. Shares are percentages of the combined total.
func composition(monthly []domain.MonthlyWaste) []WasteShare {
	var general, recycling, organic float64
	for _, m := range monthly {
		general += m.GeneralWaste
		recycling += m.Recycling
		organic += m.OrganicWaste
	}
	total := general + recycling + organic

	streams := []struct {
		category string
		tonnage  float64
	}{
		{"household", general},
		{"recyclable", recycling},
		{"organic", organic},
	}
	out := make([]WasteShare, len(streams))
	for i, st := range streams {
		share := 0.0
		if total > 0 {
			share = domain.Round2(st.tonnage / total * 100)
		}
		out[i] = WasteShare{
			Category: domain.WasteTypeInfo(st.category),
			Tonnage:  domain.Round2(st.tonnage),
			Share:    share,
		}
	}
	return out
}

func normalizeEach[T any](raws []domain.RawRecord, normalize func(domain.RawRecord) *T) []T {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		if v := normalize(raw); v != nil {
			out = append(out, *v)
		}
	}
	return out
}
