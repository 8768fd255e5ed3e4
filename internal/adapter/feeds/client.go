// Package feeds polls news syndication feeds (RSS or Atom) concurrently and
// normalizes their entries into domain events.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"

	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/httpclient"
	"github.com/couchcryptid/vigil-events/internal/observability"
)

const (
	sourceLabel = "feed"
	userAgent   = "vigil-events/1.0 (+https://github.com/couchcryptid/vigil-events)"
)

// Options configures a Client.
type Options struct {
	URLs       []string
	Timeout    time.Duration
	MaxEntries int
}

// Client implements the news-feed source for the pipeline.
type Client struct {
	urls       []string
	timeout    time.Duration
	maxEntries int
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client for the configured URLs.
func NewClient(opts Options, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		urls:       opts.URLs,
		timeout:    opts.Timeout,
		maxEntries: opts.MaxEntries,
		httpClient: httpclient.New(opts.Timeout),
		clock:      clock,
		logger:     logger.With("source", sourceLabel),
		metrics:    metrics,
	}
}

// FetchAll polls every feed at once and returns their events merged in
// configured order with duplicate ids removed. A feed that fails or times out
// contributes nothing; FetchAll itself never fails.
func (c *Client) FetchAll(ctx context.Context) []domain.Event {
	start := time.Now()
	batches := make([][]domain.Event, len(c.urls))

	var wg sync.WaitGroup
	for i, u := range c.urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[i] = c.fetchOne(ctx, u)
		}()
	}
	wg.Wait()

	events, dropped := domain.MergeUnique(batches)
	c.metrics.FeedDuplicates.Add(float64(dropped))
	c.metrics.EventsIngested.WithLabelValues(sourceLabel).Add(float64(len(events)))
	c.logger.Debug("feeds polled",
		"feeds", len(c.urls),
		"events", len(events),
		"duplicates", dropped,
		"duration", time.Since(start),
	)
	return events
}

func (c *Client) fetchOne(ctx context.Context, feedURL string) []domain.Event {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	events, err := c.parse(ctx, feedURL)
	c.metrics.SourceFetchDuration.WithLabelValues(sourceLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("feed fetch failed", "url", feedURL, "error", err)
		c.metrics.SourceFetches.WithLabelValues(sourceLabel, "error").Inc()
		return nil
	}
	c.metrics.SourceFetches.WithLabelValues(sourceLabel, "success").Inc()
	return events
}

func (c *Client) parse(ctx context.Context, feedURL string) ([]domain.Event, error) {
	parser := gofeed.NewParser()
	parser.Client = c.httpClient
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feedURL, err)
	}

	items := feed.Items
	if len(items) > c.maxEntries {
		items = items[:c.maxEntries]
	}

	source := domain.FeedSourceName(feedURL)
	ingestedAt := c.clock.Now().UTC()
	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, domain.ParseFeedEntry(domain.FeedEntry{
			Title: item.Title,
			Link:  item.Link,
		}, source, ingestedAt))
	}
	return events, nil
}
