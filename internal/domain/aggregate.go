package domain

import (
	"cmp"
	"slices"
	"time"
)

// GroupBy partitions items by key. Items keep their input order within a
// group, and every item lands in exactly one group.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// ByRegion keys a record by its region.
func ByRegion(r Record) string { return r.Region }

// ByCanonicalRegion keys a record by its region with 台/臺 spelling unified.
func ByCanonicalRegion(r Record) string { return CanonicalCounty(r.Region) }

// ByName keys a record by its station name, e.g. the river for water records.
func ByName(r Record) string {
	if r.Name == "" {
		if r.Kind == KindWater {
			return "未知河川"
		}
		return UnknownRegion
	}
	return r.Name
}

// ByKind keys a record by its monitoring network.
func ByKind(r Record) Kind { return r.Kind }

// ByStationType keys a record by its station type.
func ByStationType(r Record) string {
	if r.StationType == "" {
		return "unknown"
	}
	return r.StationType
}

// ByStatus keys a record by its operating status.
func ByStatus(r Record) string { return r.Status }

// WasteByYear keys a waste record by its year.
func WasteByYear(w WasteRecord) int { return w.Year }

// WasteByCounty keys a waste record by its county.
func WasteByCounty(w WasteRecord) string { return w.County }

// Summary holds statistics over the positive readings of one metric.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize computes count, mean, min and max of metric over records whose
// value is finite and greater than zero. Zero and missing values mean "no
// reading" and are excluded; Count is the size of the included subset. An
// empty subset yields the zero Summary.
func Summarize(records []Record, metric string) Summary {
	var s Summary
	var sum float64
	for _, r := range records {
		v, ok := r.Metric(metric)
		if !ok || v <= 0 {
			continue
		}
		if s.Count == 0 || v < s.Min {
			s.Min = v
		}
		if s.Count == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		s.Count++
	}
	if s.Count > 0 {
		s.Mean = sum / float64(s.Count)
	}
	return s
}

// SummarizeGroups summarizes metric for each group.
func SummarizeGroups[K comparable](groups map[K][]Record, metric string) map[K]Summary {
	out := make(map[K]Summary, len(groups))
	for k, records := range groups {
		out[k] = Summarize(records, metric)
	}
	return out
}

// RegionAverage is the mean AQI of the records with a reading, rounded to
// the nearest integer. It returns 0 when no record has a reading.
func RegionAverage(records []Record) int {
	return RoundInt(Summarize(records, MetricAQI).Mean)
}

// LevelCounts tallies records per AQI band.
type LevelCounts struct {
	Good               int `json:"good"`
	Moderate           int `json:"moderate"`
	UnhealthySensitive int `json:"unhealthy_sensitive"`
	Unhealthy          int `json:"unhealthy"`
	VeryUnhealthy      int `json:"very_unhealthy"`
	Hazardous          int `json:"hazardous"`
	Unknown            int `json:"unknown"`
	Total              int `json:"total"`
}

// LevelDistribution counts records per AQI band. Records without a reading
// are counted as Unknown.
func LevelDistribution(records []Record) LevelCounts {
	c := LevelCounts{Total: len(records)}
	for _, r := range records {
		aqi, ok := r.Metric(MetricAQI)
		if !ok || r.NoReading {
			c.Unknown++
			continue
		}
		switch AQILevel(aqi).Code {
		case AQIGood.Code:
			c.Good++
		case AQIModerate.Code:
			c.Moderate++
		case AQIUnhealthySensitive.Code:
			c.UnhealthySensitive++
		case AQIUnhealthy.Code:
			c.Unhealthy++
		case AQIVeryUnhealthy.Code:
			c.VeryUnhealthy++
		default:
			c.Hazardous++
		}
	}
	return c
}

// RecyclingRate returns recycled/total as a percentage rounded to two
// decimals, or 0 when total is not positive.
func RecyclingRate(recycled, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(recycled / total * 100)
}

// PerCapita returns total/population rounded to two decimals, or 0 when
// population is not positive.
func PerCapita(total, population float64) float64 {
	if population <= 0 {
		return 0
	}
	return Round2(total / population)
}

// TrendDirection is the direction of change between the two latest points.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// trendThreshold is the percent change beyond which a series is no longer stable.
const trendThreshold = 5.0

// TrendPoint is one yearly value in a series.
type TrendPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TrendResult is the direction and percent change of a series.
type TrendResult struct {
	Direction TrendDirection `json:"trend"`
	Change    float64        `json:"change"`
}

// Trend compares the two latest points by year. Fewer than two points, or a
// previous value of zero, is stable with no change. The input is not modified.
func Trend(points []TrendPoint) TrendResult {
	stable := TrendResult{Direction: TrendStable}
	if len(points) < 2 {
		return stable
	}

	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b TrendPoint) int { return cmp.Compare(a.Year, b.Year) })

	latest := sorted[len(sorted)-1].Value
	previous := sorted[len(sorted)-2].Value
	if previous == 0 {
		return stable
	}

	change := (latest - previous) / previous * 100
	result := TrendResult{Direction: TrendStable, Change: Round2(change)}
	switch {
	case change > trendThreshold:
		result.Direction = TrendIncreasing
	case change < -trendThreshold:
		result.Direction = TrendDecreasing
	}
	return result
}

// WasteTrend computes the trend of one field across yearly waste records.
func WasteTrend(records []WasteRecord, field func(WasteRecord) float64) TrendResult {
	points := make([]TrendPoint, len(records))
	for i, r := range records {
		points[i] = TrendPoint{Year: r.Year, Value: field(r)}
	}
	return Trend(points)
}

// WasteSummary rolls up waste statistics across counties.
type WasteSummary struct {
	TotalGenerated   float64 `json:"total_generated"`
	TotalRecycled    float64 `json:"total_recycled"`
	AvgRecyclingRate float64 `json:"avg_recycling_rate"`
	AvgPerCapita     float64 `json:"avg_per_capita"`
	Counties         int     `json:"counties"`
	RecyclingLevel   Level   `json:"recycling_level"`
}

// SummarizeWaste totals generated and recycled tonnage and derives the
// overall recycling rate and per-capita generation. It returns nil for empty input.
func SummarizeWaste(records []WasteRecord) *WasteSummary {
	if len(records) == 0 {
		return nil
	}

	var generated, recycled, population float64
	for _, r := range records {
		generated += r.Total.Generated
		recycled += r.Total.Recycled
		population += float64(r.Population)
	}

	rate := 0.0
	if generated > 0 {
		rate = recycled / generated * 100
	}
	perCapita := 0.0
	if population > 0 {
		perCapita = generated / population
	}

	return &WasteSummary{
		TotalGenerated:   Round2(generated),
		TotalRecycled:    Round2(recycled),
		AvgRecyclingRate: Round2(rate),
		AvgPerCapita:     Round2(perCapita),
		Counties:         len(records),
		RecyclingLevel:   RecyclingLevel(rate),
	}
}

// StationStatistics summarizes monitoring-station availability.
type StationStatistics struct {
	Total            int            `json:"total"`
	ByType           map[string]int `json:"by_type"`
	ByStatus         map[string]int `json:"by_status"`
	OnlineCount      int            `json:"online_count"`
	OfflineCount     int            `json:"offline_count"`
	MaintenanceCount int            `json:"maintenance_count"`
	AvgDataQuality   float64        `json:"avg_data_quality"`
}

// StationStats counts stations by type and status. "online" counts as
// online, "maintenance" as in maintenance, and every other status as offline.
func StationStats(records []Record) StationStatistics {
	stats := StationStatistics{
		Total:    len(records),
		ByType:   make(map[string]int),
		ByStatus: make(map[string]int),
	}
	if len(records) == 0 {
		return stats
	}

	var quality float64
	for _, r := range records {
		stats.ByType[ByStationType(r)]++
		stats.ByStatus[r.Status]++

		switch r.Status {
		case "online":
			stats.OnlineCount++
		case "maintenance":
			stats.MaintenanceCount++
		default:
			stats.OfflineCount++
		}

		if q, ok := r.Metric(MetricDataQuality); ok {
			quality += q
		}
	}
	stats.AvgDataQuality = Round2(quality / float64(len(records)))
	return stats
}

// RiverParameters are the inputs of the simplified River Pollution Index.
type RiverParameters struct {
	DO   float64 // dissolved oxygen, mg/L
	BOD  float64 // biochemical oxygen demand, mg/L
	SS   float64 // suspended solids, mg/L
	NH3N float64 // ammonia nitrogen, mg/L
}

// CalculateRPI scores each parameter 1, 3, 6 or 10 and normalizes the sum
// onto the RPI scale, rounded to two decimals.
func CalculateRPI(p RiverParameters) float64 {
	score := 1.0

	switch {
	case p.DO >= 6.5:
		score++
	case p.DO >= 4.6:
		score += 3
	case p.DO >= 2.0:
		score += 6
	default:
		score += 10
	}

	score += lowerBetterPoints(p.BOD, 3.0, 4.9, 15.0)
	score += lowerBetterPoints(p.SS, 20, 49, 100)
	score += lowerBetterPoints(p.NH3N, 0.5, 0.99, 3.0)

	return Round2((score - 4) / 4)
}

func lowerBetterPoints(v, t1, t2, t3 float64) float64 {
	switch {
	case v <= t1:
		return 1
	case v <= t2:
		return 3
	case v <= t3:
		return 6
	default:
		return 10
	}
}

func riverParameters(r Record) (RiverParameters, bool) {
	do, ok1 := r.Metric(MetricDO)
	bod, ok2 := r.Metric(MetricBOD)
	ss, ok3 := r.Metric(MetricSS)
	nh3n, ok4 := r.Metric(MetricNH3N)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return RiverParameters{}, false
	}
	return RiverParameters{DO: do, BOD: bod, SS: ss, NH3N: nh3n}, true
}

// LatestTimestamp returns the most recent record timestamp, or nil when no
// record carries one.
func LatestTimestamp(records []Record) *time.Time {
	latest, ok := LatestRecord(records)
	if !ok {
		return nil
	}
	t := *latest.Timestamp
	return &t
}

// LatestRecord returns the record with the most recent timestamp. Records
// without a timestamp are ignored.
func LatestRecord(records []Record) (Record, bool) {
	var latest Record
	found := false
	for _, r := range records {
		if r.Timestamp == nil {
			continue
		}
		if !found || r.Timestamp.After(*latest.Timestamp) {
			latest = r
			found = true
		}
	}
	return latest, found
}
