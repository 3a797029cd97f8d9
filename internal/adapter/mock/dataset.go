package mock

import (
	"math/rand/v2"
	"time"
)

// isoLayout matches the millisecond UTC timestamps the upstream API emits.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

type pollutants struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

type airStation struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	County     string     `json:"county"`
	District   string     `json:"district"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	AQI        int        `json:"aqi"`
	Status     string     `json:"status"`
	Pollutants pollutants `json:"pollutants"`
	Timestamp  string     `json:"timestamp"`
}

type dailyTrend struct {
	Date string `json:"date"`
	AQI  int    `json:"aqi"`
	PM25 int    `json:"pm25"`
	PM10 int    `json:"pm10"`
}

type hourlyTrend struct {
	Hour int `json:"hour"`
	AQI  int `json:"aqi"`
	PM25 int `json:"pm25"`
}

type airTrends struct {
	Daily  []dailyTrend  `json:"daily"`
	Hourly []hourlyTrend `json:"hourly"`
}

type waterParameters struct {
	PH              float64 `json:"ph"`
	DissolvedOxygen float64 `json:"dissolvedOxygen"`
	BOD             float64 `json:"bod"`
	COD             float64 `json:"cod"`
	SuspendedSolids float64 `json:"suspendedSolids"`
	AmmoniaNitrogen float64 `json:"ammoniaNitrogen"`
}

type waterStation struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Location          string          `json:"location"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	WaterQualityIndex float64         `json:"waterQualityIndex"`
	Status            string          `json:"status"`
	Parameters        waterParameters `json:"parameters"`
	Timestamp         string          `json:"timestamp"`
}

type monthlyWaste struct {
	Month        string `json:"month"`
	GeneralWaste int    `json:"generalWaste"`
	Recycling    int    `json:"recycling"`
	OrganicWaste int    `json:"organicWaste"`
}

type regionalWaste struct {
	Region        string  `json:"region"`
	Total         int     `json:"total"`
	RecyclingRate float64 `json:"recyclingRate"`
}

type wasteStatistics struct {
	Monthly  []monthlyWaste  `json:"monthly"`
	ByRegion []regionalWaste `json:"byRegion"`
}

type maintenance struct {
	LastMaintenance string `json:"lastMaintenance"`
	NextMaintenance string `json:"nextMaintenance"`
	Status          string `json:"status"`
}

type stationStatus struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	LastUpdate  string      `json:"lastUpdate"`
	DataQuality float64     `json:"dataQuality"`
	Maintenance maintenance `json:"maintenance"`
}

type noiseSite struct {
	ID           string  `json:"id"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	CurrentLevel float64 `json:"currentLevel"`
	AverageLevel float64 `json:"averageLevel"`
	MaxLevel     float64 `json:"maxLevel"`
	MinLevel     float64 `json:"minLevel"`
	Status       string  `json:"status"`
	Timestamp    string  `json:"timestamp"`
}

type indicators struct {
	AirQuality      map[string]float64 `json:"airQuality"`
	WaterQuality    map[string]float64 `json:"waterQuality"`
	WasteManagement map[string]float64 `json:"wasteManagement"`
	OverallScore    float64            `json:"overallScore"`
}

func airStations(now time.Time) []airStation {
	ts := now.UTC().Format(isoLayout)
	return []airStation{
		{
			ID: "TPE001", Name: "台北市", County: "台北市", District: "中正區",
			Latitude: 25.0330, Longitude: 121.5654, AQI: 85, Status: "moderate",
			Pollutants: pollutants{PM25: 35, PM10: 55, O3: 0.08, NO2: 0.035, SO2: 0.012, CO: 0.8},
			Timestamp:  ts,
		},
		{
			ID: "TPH001", Name: "新北市", County: "新北市", District: "板橋區",
			Latitude: 25.0167, Longitude: 121.4630, AQI: 72, Status: "moderate",
			Pollutants: pollutants{PM25: 28, PM10: 48, O3: 0.06, NO2: 0.028, SO2: 0.008, CO: 0.6},
			Timestamp:  ts,
		},
		{
			ID: "TXG001", Name: "台中市", County: "台中市", District: "西屯區",
			Latitude: 24.1617, Longitude: 120.6478, AQI: 95, Status: "moderate",
			Pollutants: pollutants{PM25: 42, PM10: 68, O3: 0.09, NO2: 0.038, SO2: 0.015, CO: 0.9},
			Timestamp:  ts,
		},
		{
			ID: "KHH001", Name: "高雄市", County: "高雄市", District: "前金區",
			Latitude: 22.6263, Longitude: 120.3014, AQI: 105, Status: "unhealthy_sensitive",
			Pollutants: pollutants{PM25: 48, PM10: 75, O3: 0.10, NO2: 0.042, SO2: 0.018, CO: 1.1},
			Timestamp:  ts,
		},
	}
}

// trends draws 30 daily and 24 hourly points from rng.
func trends(now time.Time, rng *rand.Rand) airTrends {
	t := airTrends{
		Daily:  make([]dailyTrend, 30),
		Hourly: make([]hourlyTrend, 24),
	}
	for i := range t.Daily {
		t.Daily[i] = dailyTrend{
			Date: now.UTC().AddDate(0, 0, i-29).Format(time.DateOnly),
			AQI:  rng.IntN(50) + 50,
			PM25: rng.IntN(30) + 20,
			PM10: rng.IntN(40) + 30,
		}
	}
	for i := range t.Hourly {
		t.Hourly[i] = hourlyTrend{
			Hour: i,
			AQI:  rng.IntN(30) + 60,
			PM25: rng.IntN(20) + 25,
		}
	}
	return t
}

func waterStations(now time.Time) []waterStation {
	ts := now.UTC().Format(isoLayout)
	return []waterStation{
		{
			ID: "WQ001", Name: "淡水河", Location: "台北市",
			Latitude: 25.1669, Longitude: 121.4316, WaterQualityIndex: 6.5, Status: "moderate",
			Parameters: waterParameters{PH: 7.2, DissolvedOxygen: 5.8, BOD: 3.2, COD: 12.5, SuspendedSolids: 15.3, AmmoniaNitrogen: 2.1},
			Timestamp:  ts,
		},
		{
			ID: "WQ002", Name: "愛河", Location: "高雄市",
			Latitude: 22.6203, Longitude: 120.3133, WaterQualityIndex: 5.2, Status: "poor",
			Parameters: waterParameters{PH: 7.5, DissolvedOxygen: 4.2, BOD: 5.8, COD: 18.7, SuspendedSolids: 22.1, AmmoniaNitrogen: 3.5},
			Timestamp:  ts,
		},
	}
}

func waste() wasteStatistics {
	return wasteStatistics{
		Monthly: []monthlyWaste{
			{"2024-01", 125000, 45000, 32000},
			{"2024-02", 118000, 48000, 35000},
			{"2024-03", 132000, 52000, 38000},
			{"2024-04", 128000, 49000, 36000},
			{"2024-05", 135000, 55000, 41000},
			{"2024-06", 142000, 58000, 43000},
		},
		ByRegion: []regionalWaste{
			{"台北市", 156000, 42},
			{"新北市", 198000, 38},
			{"台中市", 145000, 35},
			{"台南市", 112000, 40},
			{"高雄市", 167000, 37},
		},
	}
}

func stations(now time.Time) []stationStatus {
	return []stationStatus{
		{
			ID: "ST001", Name: "台北站", Type: "air_quality", Status: "online",
			LastUpdate:  now.UTC().Add(-5 * time.Minute).Format(isoLayout),
			DataQuality: 98.5,
			Maintenance: maintenance{LastMaintenance: "2024-08-15", NextMaintenance: "2024-09-15", Status: "normal"},
		},
		{
			ID: "ST002", Name: "高雄站", Type: "air_quality", Status: "maintenance",
			LastUpdate:  now.UTC().Add(-2 * time.Hour).Format(isoLayout),
			DataQuality: 0,
			Maintenance: maintenance{LastMaintenance: "2024-09-03", NextMaintenance: "2024-10-03", Status: "maintenance"},
		},
	}
}

func noise(now time.Time) []noiseSite {
	ts := now.UTC().Format(isoLayout)
	return []noiseSite{
		{
			ID: "NS001", Location: "台北市信義區", Latitude: 25.0337, Longitude: 121.5647,
			CurrentLevel: 65.2, AverageLevel: 62.8, MaxLevel: 78.5, MinLevel: 45.3,
			Status: "normal", Timestamp: ts,
		},
		{
			ID: "NS002", Location: "高雄市前鎮區", Latitude: 22.5892, Longitude: 120.3193,
			CurrentLevel: 72.8, AverageLevel: 69.2, MaxLevel: 85.1, MinLevel: 52.7,
			Status: "warning", Timestamp: ts,
		},
	}
}

func environmentalIndicators() indicators {
	return indicators{
		AirQuality:      map[string]float64{"good": 45, "moderate": 35, "unhealthy": 15, "hazardous": 5},
		WaterQuality:    map[string]float64{"excellent": 25, "good": 40, "moderate": 25, "poor": 10},
		WasteManagement: map[string]float64{"recyclingRate": 39.2, "reductionRate": 12.5, "treatmentRate": 95.8},
		OverallScore:    72.5,
	}
}
