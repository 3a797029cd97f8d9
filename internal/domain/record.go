package domain

import (
	"context"
	"math"
	"time"
)

// Kind identifies which monitoring network a record belongs to.
type Kind string

const (
	KindUnknown Kind = ""
	KindAir     Kind = "air"
	KindWater   Kind = "water"
	KindStation Kind = "station"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Maintenance is the maintenance schedule reported by a station.
type Maintenance struct {
	Last   *time.Time `json:"last,omitempty"`
	Next   *time.Time `json:"next,omitempty"`
	Status string     `json:"status"`
}

// Record is the canonical, fully typed form of a station reading.
//
// Every metric is either a finite value inside its valid range or nil.
// Coordinates are either complete and valid or nil. Level is always set.
type Record struct {
	ID          string              `json:"id"`
	Kind        Kind                `json:"kind"`
	Name        string              `json:"name"`
	Region      string              `json:"region"`
	District    string              `json:"district,omitempty"`
	StationType string              `json:"station_type,omitempty"`
	Status      string              `json:"status"`
	Timestamp   *time.Time          `json:"timestamp"`
	Coordinates *Coordinates        `json:"coordinates"`
	Metrics     map[string]*float64 `json:"metrics"`
	Level       Level               `json:"level"`
	NoReading   bool                `json:"no_reading,omitempty"`
	Maintenance *Maintenance        `json:"maintenance,omitempty"`

	// Geocoding enrichment fields.
	Address       string  `json:"address,omitempty"`
	PlaceName     string  `json:"place_name,omitempty"`
	GeoConfidence float64 `json:"geo_confidence,omitempty"`
	GeoSource     string  `json:"geo_source,omitempty"` // "forward", "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}

// Metric returns a metric value if it is present and finite.
func (r Record) Metric(name string) (float64, bool) {
	v := r.Metrics[name]
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// WasteFlow is the generated/recycled/disposed tonnage of one waste stream.
type WasteFlow struct {
	Generated float64 `json:"generated"`
	Recycled  float64 `json:"recycled"`
	Disposed  float64 `json:"disposed"`
}

// WasteRecord is the canonical form of a county's yearly waste statistics.
type WasteRecord struct {
	County        string    `json:"county"`
	Year          int       `json:"year"`
	Population    int       `json:"population"`
	Household     WasteFlow `json:"household"`
	Commercial    WasteFlow `json:"commercial"`
	Total         WasteFlow `json:"total"`
	RecyclingRate float64   `json:"recycling_rate"`
	PerCapita     float64   `json:"per_capita"`
}

// MonthlyWaste is one month of national waste tonnage.
type MonthlyWaste struct {
	Month         string  `json:"month"`
	GeneralWaste  float64 `json:"general_waste"`
	Recycling     float64 `json:"recycling"`
	OrganicWaste  float64 `json:"organic_waste"`
	Total         float64 `json:"total"`
	RecyclingRate float64 `json:"recycling_rate"`
}

// RegionalWaste is a region's waste total and reported recycling rate.
type RegionalWaste struct {
	Region        string  `json:"region"`
	Total         float64 `json:"total"`
	RecyclingRate float64 `json:"recycling_rate"`
	Level         Level   `json:"level"`
}

// RawEvent is an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
