package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedSourceName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://feeds.bbci.co.uk/news/world/rss.xml", "BBC"},
		{"https://rss.nytimes.com/services/xml/rss/nyt/World.xml", "NY Times"},
		{"https://www.aljazeera.com/xml/rss/all.xml", "Al Jazeera"},
		{"https://www.reuters.com/world/rss", "Reuters"},
		{"https://example.org/feed.xml", "News"},
		{"", "News"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+" "+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, FeedSourceName(tt.url))
		})
	}
}

func TestFeedEntryID(t *testing.T) {
	id := FeedEntryID("https://www.bbc.co.uk/news/world-1")
	assert.Len(t, id, 12)
	assert.Equal(t, id, FeedEntryID("https://www.bbc.co.uk/news/world-1"))
	assert.NotEqual(t, id, FeedEntryID("https://www.bbc.co.uk/news/world-2"))

	// SHA-256 of the empty string starts with e3b0c44298fc.
	assert.Equal(t, "e3b0c44298fc", FeedEntryID(""))
}

func TestParseFeedEntry(t *testing.T) {
	entry := FeedEntry{Title: "Explosion rocks harbour", Link: "https://example.com/a"}
	event := ParseFeedEntry(entry, "BBC", testIngestedAt)

	assert.Equal(t, FeedEntryID(entry.Link), event.ID)
	assert.Equal(t, "Explosion rocks harbour", event.Title)
	assert.Equal(t, "BBC", event.Source)
	assert.Equal(t, "https://example.com/a", event.SourceURL)
	assert.Equal(t, testIngestedAt, event.PublishedAt)
	assert.Equal(t, SeverityCritical, event.Severity)
	assert.Nil(t, event.Lat)
	assert.Nil(t, event.Lng)
	assert.Empty(t, event.Country)
}

func TestParseFeedEntry_TruncatesTitle(t *testing.T) {
	long := strings.Repeat("a", 500)
	event := ParseFeedEntry(FeedEntry{Title: long}, "News", testIngestedAt)
	assert.Len(t, event.Title, 300)
	assert.NotEmpty(t, event.ID)
}

func TestMergeUnique(t *testing.T) {
	first := []Event{
		{ID: "aaa", Source: "BBC"},
		{ID: "bbb", Source: "BBC"},
	}
	second := []Event{
		{ID: "bbb", Source: "NY Times"},
		{ID: "ccc", Source: "NY Times"},
		{ID: "ccc", Source: "NY Times"},
	}

	merged, dropped := MergeUnique([][]Event{first, nil, second})
	require.Len(t, merged, 3)
	assert.Equal(t, 2, dropped)

	ids := make([]string, len(merged))
	for i, e := range merged {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, ids)
	assert.Equal(t, "BBC", merged[1].Source, "first occurrence keeps its metadata")
}

func TestMergeUnique_Empty(t *testing.T) {
	merged, dropped := MergeUnique(nil)
	assert.Empty(t, merged)
	assert.NotNil(t, merged)
	assert.Zero(t, dropped)
}
