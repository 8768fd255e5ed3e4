package domain

import "sort"

// RankBySeverity returns a copy of events ordered critical first, keeping
// the input order among equal severities, truncated to limit when limit > 0.
func RankBySeverity(events []Event, limit int) []Event {
	ranked := make([]Event, len(events))
	copy(ranked, events)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity.Rank() < ranked[j].Severity.Rank()
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ProjectGeoPoints keeps events with a non-zero coordinate pair.
func ProjectGeoPoints(events []Event) []GeoPoint {
	points := make([]GeoPoint, 0, len(events))
	for _, e := range events {
		lat, lng, ok := e.Coordinates()
		if !ok {
			continue
		}
		points = append(points, GeoPoint{
			ID:        e.ID,
			Lat:       lat,
			Lng:       lng,
			Severity:  e.Severity,
			Title:     e.Title,
			Country:   e.Country,
			SourceURL: e.SourceURL,
		})
	}
	return points
}

// CountStats tallies severities across both sources. Mapped is the
// knowledge-base count, which stands in for "has coordinates" because that
// is the only geocoded source; it does not check each event.
func CountStats(exportEvents, feedEvents []Event) Stats {
	counts := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		counts[s] = 0
	}
	for _, batch := range [][]Event{exportEvents, feedEvents} {
		for _, e := range batch {
			counts[e.Severity]++
		}
	}
	return Stats{
		Total:    len(exportEvents) + len(feedEvents),
		Mapped:   len(exportEvents),
		Severity: counts,
	}
}
