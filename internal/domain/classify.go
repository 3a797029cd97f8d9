package domain

import (
	"math"
	"strings"
)

// Metric names understood by Classify and used as keys in Record.Metrics.
const (
	MetricAQI         = "aqi"
	MetricRPI         = "rpi"
	MetricWQI         = "wqi"
	MetricPM25        = "pm25"
	MetricPM10        = "pm10"
	MetricO3          = "o3"
	MetricNO2         = "no2"
	MetricSO2         = "so2"
	MetricCO          = "co"
	MetricPH          = "ph"
	MetricDO          = "do"
	MetricBOD         = "bod"
	MetricCOD         = "cod"
	MetricSS          = "ss"
	MetricNH3N        = "nh3n"
	MetricTP          = "tp"
	MetricDataQuality = "data_quality"
)

// band is one step of a scale: a value satisfying bound maps to level.
type band struct {
	bound float64
	level Level
}

// scale is an ordered list of bands, best first. A value that satisfies no
// band falls through to worst.
type scale struct {
	higherBetter bool
	bands        []band
	worst        Level
}

func (s scale) classify(v float64) Level {
	for _, b := range s.bands {
		if s.higherBetter && v >= b.bound {
			return b.level
		}
		if !s.higherBetter && v <= b.bound {
			return b.level
		}
	}
	return s.worst
}

func pollutantScale(good, moderate, unhealthy float64) scale {
	return scale{
		bands: []band{
			{good, pollutantGood},
			{moderate, pollutantModerate},
			{unhealthy, pollutantUnhealthy},
		},
		worst: pollutantDangerous,
	}
}

func parameterScale(good, moderate, poor float64) scale {
	return scale{
		bands: []band{
			{good, parameterGood},
			{moderate, parameterModerate},
			{poor, parameterPoor},
		},
		worst: parameterVeryPoor,
	}
}

// scales holds the standards table. Thresholds follow the Taiwan EPA
// ambient air and river water quality standards used by the dashboard.
var scales = map[string]scale{
	MetricAQI: {
		bands: []band{
			{50, AQIGood},
			{100, AQIModerate},
			{150, AQIUnhealthySensitive},
			{200, AQIUnhealthy},
			{300, AQIVeryUnhealthy},
		},
		worst: AQIHazardous,
	},
	MetricRPI: {
		bands: []band{
			{1.0, RPIUnpolluted},
			{3.0, RPILightlyPolluted},
			{6.0, RPIModeratelyPolluted},
		},
		worst: RPISeverelyPolluted,
	},
	MetricWQI: {
		higherBetter: true,
		bands: []band{
			{8.0, WQIExcellent},
			{6.0, WQIGood},
			{4.0, WQIModerate},
		},
		worst: WQIPoor,
	},

	MetricPM25: pollutantScale(15, 35, 65),   // μg/m³
	MetricPM10: pollutantScale(50, 100, 150), // μg/m³
	MetricO3:   pollutantScale(100, 160, 200),
	MetricNO2:  pollutantScale(100, 200, 400),
	MetricSO2:  pollutantScale(100, 300, 600),
	MetricCO:   pollutantScale(4.5, 9.5, 15.5), // ppm

	MetricDO: {
		higherBetter: true,
		bands: []band{
			{6.5, parameterGood},
			{4.5, parameterModerate},
			{2.0, parameterPoor},
		},
		worst: parameterVeryPoor,
	},
	MetricBOD:  parameterScale(2, 4, 10),
	MetricCOD:  parameterScale(15, 25, 40),
	MetricSS:   parameterScale(15, 25, 40),
	MetricNH3N: parameterScale(0.1, 0.3, 1.0),
	MetricTP:   parameterScale(0.02, 0.05, 0.1),
}

// Classify maps a measurement to its level for the named metric. Metric
// names are case-insensitive. Unknown metrics and non-finite values return
// UnknownLevel.
func Classify(metric string, value float64) Level {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return UnknownLevel
	}

	name := strings.ToLower(strings.TrimSpace(metric))
	if name == MetricPH {
		return classifyPH(value)
	}

	s, ok := scales[name]
	if !ok {
		return UnknownLevel
	}
	return s.classify(value)
}

// ClassifyValue is Classify for an optional measurement; nil yields UnknownLevel.
func ClassifyValue(metric string, value *float64) Level {
	if value == nil {
		return UnknownLevel
	}
	return Classify(metric, *value)
}

// classifyPH grades pH against a symmetric band: 7.0–8.0 is excellent,
// 6.5–8.5 is good, anything else is poor.
func classifyPH(v float64) Level {
	switch {
	case v >= 7.0 && v <= 8.0:
		return phExcellent
	case v >= 6.5 && v <= 8.5:
		return phGood
	default:
		return phPoor
	}
}

// AQILevel classifies an Air Quality Index value.
func AQILevel(aqi float64) Level { return Classify(MetricAQI, aqi) }

// RPILevel classifies a River Pollution Index value.
func RPILevel(rpi float64) Level { return Classify(MetricRPI, rpi) }

// WQILevel classifies a Water Quality Index value.
func WQILevel(wqi float64) Level { return Classify(MetricWQI, wqi) }

// RecyclingLevel grades a recycling rate given in percent.
func RecyclingLevel(rate float64) Level {
	switch {
	case rate >= 60:
		return RecyclingExcellent
	case rate >= 45:
		return RecyclingGood
	case rate >= 30:
		return RecyclingAverage
	default:
		return RecyclingPoor
	}
}

// StationTypeInfo describes a monitoring station type. "air_quality" is
// accepted as an alias for "air".
func StationTypeInfo(stationType string) Category {
	key := strings.ToLower(strings.TrimSpace(stationType))
	key = strings.TrimSuffix(key, "_quality")
	if c, ok := stationTypes[key]; ok {
		return c
	}
	return unknownStationType
}

// StationStatusInfo describes a station's operating status.
func StationStatusInfo(status string) Category {
	if c, ok := stationStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return c
	}
	return unknownStationStatus
}

// WasteTypeInfo describes a waste category.
func WasteTypeInfo(category string) Category {
	if c, ok := wasteTypes[category]; ok {
		return c
	}
	return unknownWasteType
}
