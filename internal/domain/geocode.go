package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding backfills Country for events that have coordinates but
// no country. A nil geocoder, a lookup error or an empty answer leaves the
// event unchanged.
func EnrichWithGeocoding(ctx context.Context, event Event, geocoder Geocoder, logger *slog.Logger) Event {
	if geocoder == nil || event.Country != "" {
		return event
	}
	lat, lng, ok := event.Coordinates()
	if !ok {
		return event
	}

	result, err := geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"event_id", event.ID,
			"lat", lat,
			"lng", lng,
			"error", err,
		)
		return event
	}
	if result.Country != "" {
		event.Country = result.Country
	}
	return event
}
