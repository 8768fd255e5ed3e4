package domain

import (
	"errors"
	"fmt"
	"time"
)

// Export column positions. The file carries no header row.
const (
	ColEventID      = 0
	ColActorName    = 6
	ColRootCode     = 28
	ColQuadClass    = 29
	ColGoldstein    = 30
	ColFallbackLat  = 40
	ColFallbackLng  = 41
	ColPrimaryLat   = 53
	ColPrimaryLng   = 54
	ColCountry      = 56
	ColDateAdded    = 59
	ColSourceURL    = 60
	MinExportColumn = 58
)

// ExportIDPrefix keeps knowledge-base ids apart from feed link hashes.
const ExportIDPrefix = "g_"

// MaxTitleLength bounds titles from every source, counted in runes.
const MaxTitleLength = 300

const dateAddedLayout = "20060102150405"

// Reasons an export row is rejected. Rejection skips the row only.
var (
	ErrShortRow      = errors.New("row has too few columns")
	ErrNoCoordinates = errors.New("row has no usable coordinate pair")
	ErrMissingID     = errors.New("row has no event id")
)

// actionLabels maps CAMEO root codes to the verb used in synthesized titles.
var actionLabels = map[string]string{
	"13": "Threat",
	"14": "Protest",
	"15": "Military activity",
	"17": "Coercion",
	"18": "Assault",
	"19": "Armed conflict",
	"20": "Violence",
}

// ParseExportRow converts one export row into an Event. ingestedAt is used as
// the publication time when the row has no parseable DATEADDED value.
func ParseExportRow(row Row, ingestedAt time.Time) (Event, error) {
	if row.Len() < MinExportColumn {
		return Event{}, fmt.Errorf("%w: %d < %d", ErrShortRow, row.Len(), MinExportColumn)
	}

	id, ok := row.String(ColEventID)
	if !ok {
		return Event{}, ErrMissingID
	}

	lat, lng, ok := exportCoordinates(row)
	if !ok {
		return Event{}, ErrNoCoordinates
	}

	rootCode, _ := row.String(ColRootCode)
	quad, _ := row.Int(ColQuadClass)
	goldstein, _ := row.Float(ColGoldstein)
	country, _ := row.String(ColCountry)
	sourceURL, _ := row.String(ColSourceURL)

	event := Event{
		ID:          ExportIDPrefix + id,
		Title:       truncateRunes(exportTitle(row, rootCode, country), MaxTitleLength),
		Source:      SourceGDELT,
		SourceURL:   sourceURL,
		PublishedAt: exportPublishedAt(row, ingestedAt),
		Country:     country,
		Severity:    ClassifyExport(rootCode, quad, goldstein),
	}
	event.SetCoordinates(lat, lng)
	return event, nil
}

// exportCoordinates prefers the primary pair and falls back to the secondary
// pair only when the primary is incomplete. Zero counts as missing.
func exportCoordinates(row Row) (float64, float64, bool) {
	if lat, lng, ok := coordinatePair(row, ColPrimaryLat, ColPrimaryLng); ok {
		return lat, lng, true
	}
	return coordinatePair(row, ColFallbackLat, ColFallbackLng)
}

func coordinatePair(row Row, latCol, lngCol int) (float64, float64, bool) {
	lat, okLat := row.Float(latCol)
	lng, okLng := row.Float(lngCol)
	if !okLat || !okLng || lat == 0 || lng == 0 {
		return 0, 0, false
	}
	return lat, lng, true
}

// exportTitle builds "<action>: <actor>[ in <country>]".
func exportTitle(row Row, rootCode, country string) string {
	action, ok := actionLabels[rootCode]
	if !ok {
		action = "Event"
	}
	title := action + ": " + row.StringOr(ColActorName, "Unknown")
	if country != "" {
		title += " in " + country
	}
	return title
}

func exportPublishedAt(row Row, fallback time.Time) time.Time {
	s, ok := row.String(ColDateAdded)
	if !ok {
		return fallback
	}
	t, err := time.ParseInLocation(dateAddedLayout, s, time.UTC)
	if err != nil {
		return fallback
	}
	return t
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
