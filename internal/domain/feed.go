package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// FeedEntry is the subset of a syndication item the pipeline reads.
type FeedEntry struct {
	Title string
	Link  string
}

// feedSourceNames maps URL substrings to display names, checked in order.
var feedSourceNames = []struct {
	match string
	name  string
}{
	{"bbc", "BBC"},
	{"nytimes", "NY Times"},
	{"aljazeera", "Al Jazeera"},
	{"reuters", "Reuters"},
}

// FeedSourceName resolves the display name for a feed URL.
func FeedSourceName(feedURL string) string {
	for _, s := range feedSourceNames {
		if strings.Contains(feedURL, s.match) {
			return s.name
		}
	}
	return SourceNews
}

// FeedEntryID is the first 12 hex characters of the SHA-256 of the link.
// An empty link still hashes, so entries without links share one id.
func FeedEntryID(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])[:12]
}

// ParseFeedEntry normalizes one feed item. Feed timestamps are not trusted,
// so the event is stamped with the ingestion time and never carries
// coordinates.
func ParseFeedEntry(entry FeedEntry, source string, ingestedAt time.Time) Event {
	return Event{
		ID:          FeedEntryID(entry.Link),
		Title:       truncateRunes(entry.Title, MaxTitleLength),
		Source:      source,
		SourceURL:   entry.Link,
		PublishedAt: ingestedAt,
		Severity:    ClassifyHeadline(entry.Title),
	}
}

// MergeUnique concatenates batches in order and drops events whose id was
// already seen. It returns the merged events and how many were dropped.
func MergeUnique(batches [][]Event) ([]Event, int) {
	var n int
	for _, b := range batches {
		n += len(b)
	}
	out := make([]Event, 0, n)
	seen := make(map[string]struct{}, n)
	for _, b := range batches {
		for _, e := range b {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out, n - len(out)
}
