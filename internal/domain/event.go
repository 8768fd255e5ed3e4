package domain

import (
	"math"
	"time"
)

// Source display names for the knowledge base and the feed fallback label.
const (
	SourceGDELT = "GDELT"
	SourceNews  = "News"
)

// Event is the normalized record produced by both adapters. It is built
// fresh on every ingestion pass and never mutated after it is returned.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	Country     string    `json:"country,omitempty"`
	Severity    Severity  `json:"severity"`
}

// SetCoordinates attaches a coordinate pair. A pair with either half
// non-finite leaves the event without coordinates.
func (e *Event) SetCoordinates(lat, lng float64) {
	if !isFinite(lat) || !isFinite(lng) {
		e.Lat, e.Lng = nil, nil
		return
	}
	e.Lat, e.Lng = &lat, &lng
}

// Coordinates returns the pair when both halves are present and non-zero.
// Zero is treated as absent, matching how upstream encodes unknown locations.
func (e Event) Coordinates() (lat, lng float64, ok bool) {
	if e.Lat == nil || e.Lng == nil {
		return 0, 0, false
	}
	if *e.Lat == 0 || *e.Lng == 0 {
		return 0, 0, false
	}
	return *e.Lat, *e.Lng, true
}

// GeoPoint is the map projection of an event with coordinates.
type GeoPoint struct {
	ID        string   `json:"id"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Severity  Severity `json:"severity"`
	Title     string   `json:"title"`
	Country   string   `json:"country"`
	SourceURL string   `json:"source_url"`
}

// Stats summarizes one ingestion pass across both sources.
type Stats struct {
	Total    int              `json:"total"`
	Mapped   int              `json:"mapped"`
	Severity map[Severity]int `json:"severity"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
