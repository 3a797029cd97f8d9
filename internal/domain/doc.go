// Package domain models Taiwan environmental monitoring data: air quality
// stations, river water quality stations, station status and county waste
// statistics.
//
// # Data Sources
//
// Readings come from the Ministry of Environment open data platform (AQI,
// river monitoring, waste statistics) and are served to the dashboard either
// from a static mock dataset or from a Postgres snapshot table. The same raw
// records may also arrive one per message on the Kafka source topic, where
// the stream normalizer converts them to [Record] values.
//
// # Data Conventions
//
// Raw records are loosely typed ([RawRecord]):
//
//	Numbers may be JSON numbers or numeric strings ("85", "5.8").
//	Any field may be missing, null or an empty string; all three mean absent.
//	Timestamps without a zone are Asia/Taipei local time (UTC+8).
//
// Field names by network:
//
//	Air:     id, name, county, district, latitude, longitude, aqi, status,
//	         pollutants{pm25, pm10, o3, no2, so2, co}, timestamp
//	Water:   id, name (river), location (county), latitude, longitude,
//	         waterQualityIndex, status, parameters{ph, dissolvedOxygen, bod,
//	         cod, suspendedSolids, ammoniaNitrogen}, timestamp
//	Station: id, name, type, status, lastUpdate, dataQuality,
//	         maintenance{lastMaintenance, nextMaintenance, status}
//
// County names appear with both 台 and 臺; [CanonicalCounty] unifies them for
// grouping.
//
// # Missing Values
//
// A missing AQI or WQI keeps a display default of 0 and sets
// [Record.NoReading]; its level is [UnknownLevel]. An AQI of 0 or below also
// counts as no reading, while a WQI of 0 or below is a poor reading stored
// as 0. Pollutant and water
// parameter readings that are missing or outside their valid range are nil
// and never contribute to statistics. Coordinates are all-or-nothing.
//
// # Classification
//
// AQI bands follow the Taiwan EPA AQI scale (upper bounds inclusive):
//
//	0–50 good | 51–100 moderate | 101–150 unhealthy for sensitive groups |
//	151–200 unhealthy | 201–300 very unhealthy | >300 hazardous
//
// The River Pollution Index uses ≤1 unpolluted, ≤3 lightly, ≤6 moderately
// and >6 severely polluted. WQI is higher-is-better on a 0–10 scale.
//
// # Rounding
//
// Derived percentages, per-capita figures and distances are rounded to two
// decimals half away from zero using decimal arithmetic ([Round2]).
package domain
