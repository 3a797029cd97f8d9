package domain

import (
	"context"
	"log/slog"
)

// Geocoding sources recorded on a record.
const (
	GeoSourceForward  = "forward"
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// EnrichWithGeocoding attempts to enrich a record with geocoding data.
// If geocoder is nil the record is returned untouched. Failures are logged
// and recorded in GeoSource; the record is never dropped.
func EnrichWithGeocoding(ctx context.Context, rec Record, geocoder Geocoder, logger *slog.Logger) Record {
	if geocoder == nil {
		return rec
	}

	place := rec.District
	if place == "" {
		place = rec.Name
	}
	hasPlace := place != "" && rec.Region != "" && rec.Region != UnknownRegion

	// Forward: county + place -> coordinates.
	if rec.Coordinates == nil && hasPlace {
		result, err := geocoder.ForwardGeocode(ctx, place, rec.Region)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"record_id", rec.ID,
				"place", place,
				"county", rec.Region,
				"error", err,
			)
			rec.GeoSource = GeoSourceFailed
			return rec
		}
		if (result.Lat != 0 || result.Lng != 0) && ValidCoordinates(result.Lat, result.Lng) {
			rec.Coordinates = &Coordinates{Lat: result.Lat, Lng: result.Lng}
			rec.Address = result.FormattedAddress
			rec.PlaceName = result.PlaceName
			rec.GeoConfidence = result.Confidence
			rec.GeoSource = GeoSourceForward
			return rec
		}
		rec.GeoSource = GeoSourceOriginal
		return rec
	}

	// Reverse: coordinates -> address.
	if rec.Coordinates != nil {
		result, err := geocoder.ReverseGeocode(ctx, rec.Coordinates.Lat, rec.Coordinates.Lng)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"record_id", rec.ID,
				"lat", rec.Coordinates.Lat,
				"lng", rec.Coordinates.Lng,
				"error", err,
			)
			rec.GeoSource = GeoSourceFailed
			return rec
		}
		if result.FormattedAddress != "" {
			rec.Address = result.FormattedAddress
			rec.PlaceName = result.PlaceName
			rec.GeoConfidence = result.Confidence
			rec.GeoSource = GeoSourceReverse
			return rec
		}
	}

	rec.GeoSource = GeoSourceOriginal
	return rec
}
