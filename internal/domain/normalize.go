package domain

import (
	"math"
	"strings"
)

// UnknownRegion is the default region for records without a county or location.
const UnknownRegion = "未知"

// metricRange is the inclusive valid range for a metric.
type metricRange struct {
	min, max float64
}

// validRanges bounds every metric the normalizer emits.
var validRanges = map[string]metricRange{
	MetricAQI:         {0, 500},
	MetricPM25:        {0, 1000},
	MetricPM10:        {0, 1000},
	MetricO3:          {0, 500},
	MetricNO2:         {0, 1000},
	MetricSO2:         {0, 1000},
	MetricCO:          {0, 50},
	MetricWQI:         {0, 10},
	MetricPH:          {0, 14},
	MetricDO:          {0, 20},
	MetricBOD:         {0, 1000},
	MetricCOD:         {0, 1000},
	MetricSS:          {0, 1000},
	MetricNH3N:        {0, 100},
	MetricTP:          {0, 100},
	MetricDataQuality: {0, 100},
}

// airPollutants are read from the nested "pollutants" object.
var airPollutants = []string{MetricPM25, MetricPM10, MetricO3, MetricNO2, MetricSO2, MetricCO}

// waterParameters maps canonical metric names to the nested "parameters"
// keys, long form first.
var waterParameters = []struct {
	metric string
	keys   []string
}{
	{MetricPH, []string{"ph"}},
	{MetricDO, []string{"dissolvedOxygen", "do"}},
	{MetricBOD, []string{"bod"}},
	{MetricCOD, []string{"cod"}},
	{MetricSS, []string{"suspendedSolids", "ss"}},
	{MetricNH3N, []string{"ammoniaNitrogen", "nh3n"}},
	{MetricTP, []string{"totalPhosphorus", "tp"}},
}

// DetectKind infers the monitoring network from the shape of a raw record.
func DetectKind(raw RawRecord) Kind {
	switch {
	case raw == nil:
		return KindUnknown
	case raw.Has("aqi") || raw.Has("pollutants"):
		return KindAir
	case raw.Has("waterQualityIndex") || raw.Has("parameters"):
		return KindWater
	case raw.Has("type") || raw.Has("dataQuality") || raw.Has("lastUpdate"):
		return KindStation
	default:
		return KindUnknown
	}
}

// ParseKind maps a kind name (as carried in a message header) to a Kind.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAir:
		return KindAir
	case KindWater:
		return KindWater
	case KindStation:
		return KindStation
	default:
		return KindUnknown
	}
}

// Normalize converts a raw record of any kind into a canonical record.
// It returns nil only when raw is nil.
func Normalize(raw RawRecord) *Record {
	return NormalizeAs(DetectKind(raw), raw)
}

// NormalizeAs normalizes raw as the given kind. KindUnknown yields a
// defaulted record with the unknown level.
func NormalizeAs(kind Kind, raw RawRecord) *Record {
	if raw == nil {
		return nil
	}
	switch kind {
	case KindAir:
		return NormalizeAir(raw)
	case KindWater:
		return NormalizeWater(raw)
	case KindStation:
		return NormalizeStation(raw)
	default:
		rec := baseRecord(raw, KindUnknown, "county")
		rec.Level = UnknownLevel
		return &rec
	}
}

// NormalizeAir converts a raw air-quality station reading. The AQI keeps a
// zero display default when missing; pollutant concentrations become nil.
func NormalizeAir(raw RawRecord) *Record {
	if raw == nil {
		return nil
	}

	rec := baseRecord(raw, KindAir, "county")

	aqi, ok := raw.Float("aqi")
	aqi = math.Trunc(aqi)
	switch {
	case !ok || aqi <= 0:
		aqi = 0
		rec.NoReading = true
	case aqi > validRanges[MetricAQI].max:
		aqi = validRanges[MetricAQI].max
	}
	rec.Metrics[MetricAQI] = &aqi

	pollutants, _ := raw.Record("pollutants")
	for _, name := range airPollutants {
		rec.Metrics[name] = rangedMetric(pollutants, name, name)
	}

	if rec.NoReading {
		rec.Level = UnknownLevel
	} else {
		rec.Level = AQILevel(aqi)
	}
	return &rec
}

// NormalizeWater converts a raw river water-quality reading. The WQI keeps a
// zero display default when missing or negative; parameters become nil. When dissolved
// oxygen, BOD, suspended solids and ammonia nitrogen are all present the
// simplified RPI is derived as well.
func NormalizeWater(raw RawRecord) *Record {
	if raw == nil {
		return nil
	}

	rec := baseRecord(raw, KindWater, "location")

	// Unlike AQI, a zero or negative WQI is a reading; it classifies as poor.
	wqi, ok := raw.Float("waterQualityIndex")
	if !ok {
		rec.NoReading = true
	}
	level := WQILevel(wqi)
	switch {
	case wqi < 0:
		wqi = 0
	case wqi > validRanges[MetricWQI].max:
		wqi = validRanges[MetricWQI].max
	}
	rec.Metrics[MetricWQI] = &wqi

	params, _ := raw.Record("parameters")
	for _, p := range waterParameters {
		for _, key := range p.keys {
			if v := rangedMetric(params, p.metric, key); v != nil {
				rec.Metrics[p.metric] = v
				break
			}
		}
		if _, set := rec.Metrics[p.metric]; !set {
			rec.Metrics[p.metric] = nil
		}
	}

	if rp, ok := riverParameters(rec); ok {
		rpi := CalculateRPI(rp)
		rec.Metrics[MetricRPI] = &rpi
	}

	if rec.NoReading {
		rec.Level = UnknownLevel
	} else {
		rec.Level = level
	}
	return &rec
}

// NormalizeStation converts a raw station-status record. Its level reflects
// the operating status.
func NormalizeStation(raw RawRecord) *Record {
	if raw == nil {
		return nil
	}

	rec := baseRecord(raw, KindStation, "county")

	stationType, ok := raw.String("type")
	if !ok {
		stationType = "unknown"
	}
	rec.StationType = stationType

	if t, ok := raw.Time("lastUpdate"); ok {
		rec.Timestamp = &t
	}

	quality := 0.0
	if v := rangedMetric(raw, MetricDataQuality, "dataQuality"); v != nil {
		quality = *v
	}
	rec.Metrics[MetricDataQuality] = &quality

	rec.Maintenance = normalizeMaintenance(raw)

	status := StationStatusInfo(rec.Status)
	rec.Level = Level{Code: status.Code, Label: status.Label, Color: status.Color}
	return &rec
}

func normalizeMaintenance(raw RawRecord) *Maintenance {
	m := &Maintenance{Status: "normal"}
	sub, ok := raw.Record("maintenance")
	if !ok {
		return m
	}
	if t, ok := sub.Time("lastMaintenance"); ok {
		m.Last = &t
	}
	if t, ok := sub.Time("nextMaintenance"); ok {
		m.Next = &t
	}
	if s, ok := sub.String("status"); ok {
		m.Status = s
	}
	return m
}

// baseRecord fills the fields shared by every kind. regionKey names the raw
// field that carries the county.
func baseRecord(raw RawRecord, kind Kind, regionKey string) Record {
	rec := Record{
		Kind:        kind,
		Region:      UnknownRegion,
		Status:      "normal",
		Metrics:     make(map[string]*float64),
		ProcessedAt: clock.Now().UTC(),
	}

	rec.ID, _ = raw.String("id")
	rec.Name, _ = raw.String("name")
	rec.District, _ = raw.String("district")
	if region, ok := raw.String(regionKey); ok {
		rec.Region = region
	}
	if status, ok := raw.String("status"); ok {
		rec.Status = status
	}
	if t, ok := raw.Time("timestamp"); ok {
		rec.Timestamp = &t
	}
	rec.Coordinates = normalizeCoordinates(raw)
	return rec
}

// normalizeCoordinates returns nil unless both latitude and longitude parse
// and fall inside WGS-84 bounds.
func normalizeCoordinates(raw RawRecord) *Coordinates {
	lat, okLat := raw.Float("latitude")
	lng, okLng := raw.Float("longitude")
	if !okLat || !okLng {
		return nil
	}
	if !ValidCoordinates(lat, lng) {
		return nil
	}
	return &Coordinates{Lat: lat, Lng: lng}
}

// ValidCoordinates reports whether lat/lng lie inside WGS-84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// InValidRange reports whether v is finite and inside the valid range of
// metric. Metrics without a declared range only need to be finite.
func InValidRange(metric string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	r, bounded := validRanges[metric]
	return !bounded || (v >= r.min && v <= r.max)
}

// rangedMetric reads key from raw and returns it only if it falls inside
// the valid range of metric.
func rangedMetric(raw RawRecord, metric, key string) *float64 {
	if raw == nil {
		return nil
	}
	v, ok := raw.Float(key)
	if !ok {
		return nil
	}
	if !InValidRange(metric, v) {
		return nil
	}
	return &v
}

// canonicalCounties unifies the 台/臺 spelling of county names.
var canonicalCounties = map[string]string{
	"台北市": "臺北市",
	"台中市": "臺中市",
	"台南市": "臺南市",
	"台東縣": "臺東縣",
}

// CanonicalCounty returns the official spelling of a county name. Empty
// input yields UnknownRegion.
func CanonicalCounty(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownRegion
	}
	if c, ok := canonicalCounties[name]; ok {
		return c
	}
	return name
}
