package query

import (
	"cmp"
	"context"
	"slices"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// Stations answers monitoring-station queries.
type Stations struct {
	fetcher
}

// All returns every station that has a name and a type.
func (s *Stations) All(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	return s.records(ctx, EndpointStationStatus, params, domain.NormalizeStation, "name", "type")
}

// ByType returns stations of stationType.
func (s *Stations) ByType(ctx context.Context, stationType string, params Params) (Result[[]domain.Record], error) {
	res, err := s.records(ctx, EndpointStationStatus, params, domain.NormalizeStation)
	if err != nil {
		return res, err
	}
	return filter(res, func(r domain.Record) bool { return r.StationType == stationType }), nil
}

// Statistics counts stations by type and status.
func (s *Stations) Statistics(ctx context.Context, params Params) (Result[domain.StationStatistics], error) {
	res, err := s.records(ctx, EndpointStationStatus, params, domain.NormalizeStation)
	if err != nil {
		return Result[domain.StationStatistics]{}, err
	}
	return mapResult(res, domain.StationStats), nil
}

// StationDetail is a station record with its type and status descriptions
// and a completeness check of its descriptive fields.
type StationDetail struct {
	domain.Record
	TypeInfo   domain.Category          `json:"type_info"`
	StatusInfo domain.Category          `json:"status_info"`
	Validation domain.StationValidation `json:"validation"`
}

// Detail returns the station with id as a zero- or one-element list.
func (s *Stations) Detail(ctx context.Context, id string, params Params) (Result[[]StationDetail], error) {
	res, err := s.records(ctx, EndpointStationStatus, params, domain.NormalizeStation)
	if err != nil {
		return Result[[]StationDetail]{}, err
	}
	if !res.Success {
		return Result[[]StationDetail]{Success: false, Data: []StationDetail{}, Message: res.Message}, nil
	}
	i := slices.IndexFunc(res.Data, func(r domain.Record) bool { return r.ID == id })
	if i < 0 {
		return succeedList([]StationDetail{}, res.Message), nil
	}
	return succeedList([]StationDetail{describeStation(res.Data[i])}, res.Message), nil
}

func describeStation(r domain.Record) StationDetail {
	return StationDetail{
		Record:     r,
		TypeInfo:   domain.StationTypeInfo(r.StationType),
		StatusInfo: domain.StationStatusInfo(r.Status),
		Validation: domain.ValidateStation(r),
	}
}

// Nearest returns up to limit air and water monitoring sites closest to
// (lat, lng). Sites without coordinates are skipped.
func (s *Stations) Nearest(ctx context.Context, lat, lng float64, limit int, params Params) (Result[[]domain.NearbyRecord], error) {
	sites, err := s.sites(ctx, params)
	if err != nil || !sites.Success {
		return Result[[]domain.NearbyRecord]{Success: sites.Success, Data: []domain.NearbyRecord{}, Message: sites.Message}, err
	}
	return succeedList(domain.Nearest(lat, lng, sites.Data, limit), sites.Message), nil
}

// countyAreas is the land area of each municipality in km².
var countyAreas = map[string]float64{
	"臺北市": 271.80,
	"新北市": 2052.57,
	"桃園市": 1220.95,
	"臺中市": 2214.90,
	"臺南市": 2191.65,
	"高雄市": 2951.85,
}

// CountyDensity is the number of monitoring sites per km² in a county.
type CountyDensity struct {
	County  string  `json:"county"`
	Sites   int     `json:"sites"`
	AreaKm2 float64 `json:"area_km2"`
	Density float64 `json:"density"`
}

// Density counts air and water monitoring sites per county, sorted by
// county. Counties without a known area report a density of 0.
func (s *Stations) Density(ctx context.Context, params Params) (Result[[]CountyDensity], error) {
	sites, err := s.sites(ctx, params)
	if err != nil || !sites.Success {
		return Result[[]CountyDensity]{Success: sites.Success, Data: []CountyDensity{}, Message: sites.Message}, err
	}

	groups := domain.GroupBy(sites.Data, domain.ByCanonicalRegion)
	out := make([]CountyDensity, 0, len(groups))
	for county, records := range groups {
		area := countyAreas[county]
		out = append(out, CountyDensity{
			County:  county,
			Sites:   len(records),
			AreaKm2: area,
			Density: domain.Density(len(records), area),
		})
	}
	slices.SortFunc(out, func(a, b CountyDensity) int { return cmp.Compare(a.County, b.County) })
	return succeedList(out, sites.Message), nil
}

// sites fetches air and water monitoring sites together. A failure from
// either endpoint fails the whole result.
func (s *Stations) sites(ctx context.Context, params Params) (Result[[]domain.Record], error) {
	air, err := s.records(ctx, EndpointAirQuality, params, domain.NormalizeAir)
	if err != nil || !air.Success {
		return air, err
	}
	water, err := s.records(ctx, EndpointWaterQuality, params, domain.NormalizeWater)
	if err != nil || !water.Success {
		return water, err
	}
	return succeedList(append(slices.Clip(air.Data), water.Data...), air.Message), nil
}
