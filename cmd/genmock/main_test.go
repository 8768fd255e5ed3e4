package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/vigil-events/internal/domain"
)

func TestBuildManifest(t *testing.T) {
	m := buildManifest(exportRows(), feedDocuments(), 15)

	assert.Equal(t, 13, m.ExportRows)
	assert.Equal(t, 10, m.ExportAccepted)
	assert.Equal(t, map[string]int{"short": 1, "no_coordinates": 1, "missing_id": 1}, m.ExportRejected)
	assert.Equal(t, map[domain.Severity]int{
		domain.SeverityCritical: 4,
		domain.SeverityHigh:     2,
		domain.SeverityMedium:   2,
		domain.SeverityLow:      2,
	}, m.ExportSeverity)

	assert.Equal(t, 20, m.FeedEntries, "first feed is capped at 15")
	assert.Equal(t, 19, m.FeedUnique, "shared story appears in two feeds")
}
