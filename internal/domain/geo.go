package domain

import (
	"cmp"
	"math"
	"slices"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometres between two
// points, rounded to two decimals.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return Round2(earthRadiusKm * c)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// NearbyRecord is a record with its distance from a query point.
type NearbyRecord struct {
	Record
	DistanceKm float64 `json:"distance_km"`
}

// Nearest returns up to limit records closest to (lat, lng), nearest first.
// Records without coordinates are skipped. A non-positive limit returns nil.
func Nearest(lat, lng float64, records []Record, limit int) []NearbyRecord {
	if limit <= 0 || len(records) == 0 {
		return nil
	}

	nearby := make([]NearbyRecord, 0, len(records))
	for _, r := range records {
		if r.Coordinates == nil {
			continue
		}
		nearby = append(nearby, NearbyRecord{
			Record:     r,
			DistanceKm: Distance(lat, lng, r.Coordinates.Lat, r.Coordinates.Lng),
		})
	}

	slices.SortStableFunc(nearby, func(a, b NearbyRecord) int { return cmp.Compare(a.DistanceKm, b.DistanceKm) })
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby
}

// Density returns stations per square kilometre, rounded to two decimals.
func Density(stations int, areaKm2 float64) float64 {
	if stations <= 0 || areaKm2 <= 0 {
		return 0
	}
	return Round2(float64(stations) / areaKm2)
}

// StationValidation reports which descriptive fields a station is missing.
type StationValidation struct {
	Valid        bool     `json:"valid"`
	Issues       []string `json:"issues"`
	Completeness int      `json:"completeness"`
}

// ValidateStation checks a station for a name, coordinates, a county and an
// address. Completeness is the percentage of the four present.
func ValidateStation(r Record) StationValidation {
	issues := []string{}
	if r.Name == "" {
		issues = append(issues, "缺少監測站名稱")
	}
	if r.Coordinates == nil {
		issues = append(issues, "缺少座標資訊")
	}
	if r.Region == "" || r.Region == UnknownRegion {
		issues = append(issues, "缺少縣市資訊")
	}
	if r.Address == "" {
		issues = append(issues, "缺少地址資訊")
	}

	const checks = 4
	return StationValidation{
		Valid:        len(issues) == 0,
		Issues:       issues,
		Completeness: RoundInt(float64(checks-len(issues)) / checks * 100),
	}
}
