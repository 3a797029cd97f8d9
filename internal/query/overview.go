package query

import (
	"context"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
)

// Overview answers the dashboard's cross-domain queries.
type Overview struct {
	fetcher
}

// NoiseReading is one environmental noise monitoring site, levels in dB(A).
type NoiseReading struct {
	ID           string              `json:"id"`
	Location     string              `json:"location"`
	Coordinates  *domain.Coordinates `json:"coordinates"`
	CurrentLevel float64             `json:"current_level"`
	AverageLevel float64             `json:"average_level"`
	MaxLevel     float64             `json:"max_level"`
	MinLevel     float64             `json:"min_level"`
	Status       string              `json:"status"`
	Timestamp    *time.Time          `json:"timestamp"`
}

// Noise returns the noise monitoring sites.
func (o *Overview) Noise(ctx context.Context, params Params) (Result[[]NoiseReading], error) {
	raws, resp, ok, err := o.raws(ctx, EndpointNoise, params)
	if err != nil {
		return Result[[]NoiseReading]{}, err
	}
	if !ok {
		return failedList[NoiseReading](resp), nil
	}
	return succeedList(normalizeEach(raws, normalizeNoise), resp.Message), nil
}

func normalizeNoise(raw domain.RawRecord) *NoiseReading {
	if raw == nil {
		return nil
	}
	n := &NoiseReading{
		Location:     domain.UnknownRegion,
		Status:       "normal",
		CurrentLevel: nonNegative(raw, "currentLevel"),
		AverageLevel: nonNegative(raw, "averageLevel"),
		MaxLevel:     nonNegative(raw, "maxLevel"),
		MinLevel:     nonNegative(raw, "minLevel"),
	}
	n.ID, _ = raw.String("id")
	if loc, ok := raw.String("location"); ok {
		n.Location = loc
	}
	if status, ok := raw.String("status"); ok {
		n.Status = status
	}
	lat, okLat := raw.Float("latitude")
	lng, okLng := raw.Float("longitude")
	if okLat && okLng && domain.ValidCoordinates(lat, lng) {
		n.Coordinates = &domain.Coordinates{Lat: lat, Lng: lng}
	}
	if t, ok := raw.Time("timestamp"); ok {
		n.Timestamp = &t
	}
	return n
}

// Indicators is the dashboard's headline environmental scorecard.
type Indicators struct {
	AirQuality      map[string]float64 `json:"air_quality"`
	WaterQuality    map[string]float64 `json:"water_quality"`
	WasteManagement map[string]float64 `json:"waste_management"`
	OverallScore    float64            `json:"overall_score"`
}

// Indicators returns the environmental scorecard.
func (o *Overview) Indicators(ctx context.Context, params Params) (Result[Indicators], error) {
	var payload domain.RawRecord
	resp, ok, err := o.object(ctx, EndpointEnvIndicators, params, &payload)
	if err != nil {
		return Result[Indicators]{}, err
	}
	if !ok {
		return failed[Indicators](resp), nil
	}

	ind := Indicators{
		AirQuality:      numericFields(payload, "airQuality"),
		WaterQuality:    numericFields(payload, "waterQuality"),
		WasteManagement: numericFields(payload, "wasteManagement"),
		OverallScore:    nonNegative(payload, "overallScore"),
	}
	return succeed(ind, 1, resp.Message), nil
}

// numericFields returns the numeric fields of the nested object at key.
func numericFields(raw domain.RawRecord, key string) map[string]float64 {
	out := make(map[string]float64)
	sub, ok := raw.Record(key)
	if !ok {
		return out
	}
	for k := range sub {
		if v, ok := sub.Float(k); ok {
			out[k] = v
		}
	}
	return out
}
