// Package pipeline gathers both sources for one request and builds the
// served views from the combined result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/observability"
)

// ExportSource yields knowledge-base events. Implementations must not fail;
// an unavailable upstream yields an empty slice.
type ExportSource interface {
	Fetch(ctx context.Context, limit int) []domain.Event
}

// FeedSource yields news-feed events with duplicates already removed.
// Implementations must not fail.
type FeedSource interface {
	FetchAll(ctx context.Context) []domain.Event
}

// Limits bounds each view.
type Limits struct {
	Ranked      int // events returned by the ranked view
	RankedGDELT int // knowledge-base events requested for the ranked view
	GeoGDELT    int
	StatsGDELT  int
}

// Pipeline builds the ranked, geo and stats views from fresh upstream data
// on every call. It holds no event state between calls.
type Pipeline struct {
	exports ExportSource
	feeds   FeedSource
	limits  Limits
	logger  *slog.Logger
	metrics *observability.Metrics

	// lastPassEmpty is set when the most recent pass got nothing from
	// either source; ran is set after the first pass completes.
	ran           atomic.Bool
	lastPassEmpty atomic.Bool
}

// New creates a Pipeline over the two sources.
func New(exports ExportSource, feeds FeedSource, limits Limits, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		exports: exports,
		feeds:   feeds,
		limits:  limits,
		logger:  logger,
		metrics: metrics,
	}
}

// RankedFeed returns the combined events ordered critical first. Within a
// severity, feed events precede knowledge-base events and each keeps its
// source order.
func (p *Pipeline) RankedFeed(ctx context.Context) []domain.Event {
	defer p.observe("ranked", time.Now())

	exports, feeds := p.gather(ctx, p.limits.RankedGDELT, true)
	combined := make([]domain.Event, 0, len(feeds)+len(exports))
	combined = append(combined, feeds...)
	combined = append(combined, exports...)
	return domain.RankBySeverity(combined, p.limits.Ranked)
}

// GeoPoints returns map markers for knowledge-base events. Feed entries are
// never geolocated, so the feed source is not consulted.
func (p *Pipeline) GeoPoints(ctx context.Context) []domain.GeoPoint {
	defer p.observe("geo", time.Now())

	exports, _ := p.gather(ctx, p.limits.GeoGDELT, false)
	return domain.ProjectGeoPoints(exports)
}

// Stats returns the combined totals and severity breakdown.
func (p *Pipeline) Stats(ctx context.Context) domain.Stats {
	defer p.observe("stats", time.Now())

	exports, feeds := p.gather(ctx, p.limits.StatsGDELT, true)
	return domain.CountStats(exports, feeds)
}

// CheckReadiness reports an error when the most recent pass got no events
// from any source. Before the first pass the service is considered ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.ran.Load() && p.lastPassEmpty.Load() {
		return errors.New("last pass returned no events from any source")
	}
	return nil
}

// gather runs the sources concurrently. Caller cancellation is detached so a
// disconnecting client does not abort fetches; each adapter bounds itself
// with its own timeout.
func (p *Pipeline) gather(ctx context.Context, exportLimit int, withFeeds bool) (exports, feeds []domain.Event) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.Go(func() error {
		exports = p.exports.Fetch(ctx, exportLimit)
		return nil
	})
	if withFeeds {
		g.Go(func() error {
			feeds = p.feeds.FetchAll(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if exports == nil {
		exports = []domain.Event{}
	}
	if feeds == nil {
		feeds = []domain.Event{}
	}

	p.lastPassEmpty.Store(len(exports) == 0 && len(feeds) == 0)
	p.ran.Store(true)
	p.logger.Debug("sources gathered", "gdelt", len(exports), "feeds", len(feeds))
	return exports, feeds
}

func (p *Pipeline) observe(view string, start time.Time) {
	p.metrics.ViewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
