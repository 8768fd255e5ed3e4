package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/observability"
	"github.com/couchcryptid/vigil-events/internal/pipeline"
)

// --- mocks ---

type mockExports struct {
	events    []domain.Event
	delay     time.Duration
	lastLimit atomic.Int64
	calls     atomic.Int32
	ctxErr    atomic.Value
}

func (m *mockExports) Fetch(ctx context.Context, limit int) []domain.Event {
	m.calls.Add(1)
	m.lastLimit.Store(int64(limit))
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.ctxErr.Store(errString(ctx.Err()))
	if len(m.events) > limit {
		return m.events[:limit]
	}
	return m.events
}

type mockFeeds struct {
	events []domain.Event
	delay  time.Duration
	calls  atomic.Int32
}

func (m *mockFeeds) FetchAll(_ context.Context) []domain.Event {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.events
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func event(id string, sev domain.Severity) domain.Event {
	return domain.Event{ID: id, Title: id, Severity: sev}
}

func located(id string, sev domain.Severity, lat, lng float64) domain.Event {
	e := event(id, sev)
	e.SetCoordinates(lat, lng)
	return e
}

func ids(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

var defaultLimits = pipeline.Limits{Ranked: 100, RankedGDELT: 200, GeoGDELT: 300, StatsGDELT: 200}

func newPipeline(exports pipeline.ExportSource, feeds pipeline.FeedSource, limits pipeline.Limits) (*pipeline.Pipeline, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.New(exports, feeds, limits, logger, metrics), metrics
}

// --- ranked ---

func TestRankedFeed_OrdersBySeverityKeepingSourceOrder(t *testing.T) {
	exports := &mockExports{events: []domain.Event{
		event("g_1", domain.SeverityMedium),
		event("g_2", domain.SeverityCritical),
	}}
	feeds := &mockFeeds{events: []domain.Event{
		event("f_1", domain.SeverityLow),
		event("f_2", domain.SeverityCritical),
		event("f_3", domain.SeverityHigh),
	}}
	p, metrics := newPipeline(exports, feeds, defaultLimits)

	got := p.RankedFeed(context.Background())

	want := []string{"f_2", "g_2", "f_3", "g_1", "f_1"}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("ranked order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(200), exports.lastLimit.Load())
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ViewDuration))
}

func TestRankedFeed_TruncatesAfterSorting(t *testing.T) {
	exports := &mockExports{events: []domain.Event{
		event("g_low", domain.SeverityLow),
		event("g_crit", domain.SeverityCritical),
	}}
	feeds := &mockFeeds{events: []domain.Event{event("f_high", domain.SeverityHigh)}}
	limits := defaultLimits
	limits.Ranked = 2
	p, _ := newPipeline(exports, feeds, limits)

	assert.Equal(t, []string{"g_crit", "f_high"}, ids(p.RankedFeed(context.Background())))
}

func TestRankedFeed_DoesNotMergeAcrossSources(t *testing.T) {
	same := event("dup", domain.SeverityHigh)
	p, _ := newPipeline(&mockExports{events: []domain.Event{same}}, &mockFeeds{events: []domain.Event{same}}, defaultLimits)

	assert.Len(t, p.RankedFeed(context.Background()), 2)
}

func TestRankedFeed_BothSourcesEmpty(t *testing.T) {
	p, _ := newPipeline(&mockExports{}, &mockFeeds{}, defaultLimits)

	got := p.RankedFeed(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankedFeed_OneSourceDown(t *testing.T) {
	feeds := &mockFeeds{events: []domain.Event{event("f_1", domain.SeverityLow)}}
	p, _ := newPipeline(&mockExports{}, feeds, defaultLimits)

	assert.Equal(t, []string{"f_1"}, ids(p.RankedFeed(context.Background())))
}

func TestRankedFeed_FetchesSourcesConcurrently(t *testing.T) {
	exports := &mockExports{delay: 200 * time.Millisecond, events: []domain.Event{event("g", domain.SeverityLow)}}
	feeds := &mockFeeds{delay: 200 * time.Millisecond, events: []domain.Event{event("f", domain.SeverityLow)}}
	p, _ := newPipeline(exports, feeds, defaultLimits)

	start := time.Now()
	got := p.RankedFeed(context.Background())

	assert.Less(t, time.Since(start), 390*time.Millisecond)
	assert.Equal(t, []string{"f", "g"}, ids(got))
}

func TestRankedFeed_CallerCancellationNotPropagated(t *testing.T) {
	exports := &mockExports{delay: 50 * time.Millisecond}
	p, _ := newPipeline(exports, &mockFeeds{}, defaultLimits)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	p.RankedFeed(ctx)

	assert.Empty(t, exports.ctxErr.Load())
}

func TestRankedFeed_RefetchesEveryCall(t *testing.T) {
	exports := &mockExports{}
	feeds := &mockFeeds{}
	p, _ := newPipeline(exports, feeds, defaultLimits)

	p.RankedFeed(context.Background())
	p.RankedFeed(context.Background())

	assert.Equal(t, int32(2), exports.calls.Load())
	assert.Equal(t, int32(2), feeds.calls.Load())
}

// --- geo ---

func TestGeoPoints_KnowledgeBaseOnly(t *testing.T) {
	exports := &mockExports{events: []domain.Event{
		located("g_1", domain.SeverityHigh, 15.5, 32.5),
		located("g_zero_lat", domain.SeverityHigh, 0, 32.5),
		event("g_none", domain.SeverityLow),
		located("g_2", domain.SeverityLow, -33.9, 151.2),
	}}
	feeds := &mockFeeds{events: []domain.Event{event("f_1", domain.SeverityCritical)}}
	p, _ := newPipeline(exports, feeds, defaultLimits)

	points := p.GeoPoints(context.Background())

	require.Len(t, points, 2)
	assert.Equal(t, "g_1", points[0].ID)
	assert.InDelta(t, 15.5, points[0].Lat, 1e-9)
	assert.Equal(t, "g_2", points[1].ID)
	assert.Equal(t, int64(300), exports.lastLimit.Load())
	assert.Equal(t, int32(0), feeds.calls.Load())
}

func TestGeoPoints_Empty(t *testing.T) {
	p, _ := newPipeline(&mockExports{}, &mockFeeds{}, defaultLimits)

	points := p.GeoPoints(context.Background())

	assert.NotNil(t, points)
	assert.Empty(t, points)
}

// --- stats ---

func TestStats_CountsUnion(t *testing.T) {
	exports := &mockExports{events: []domain.Event{
		event("g_1", domain.SeverityCritical),
		event("g_2", domain.SeverityCritical),
		event("g_3", domain.SeverityLow),
	}}
	feeds := &mockFeeds{events: []domain.Event{
		event("f_1", domain.SeverityHigh),
		event("f_2", domain.SeverityLow),
	}}
	p, _ := newPipeline(exports, feeds, defaultLimits)

	got := p.Stats(context.Background())

	want := domain.Stats{
		Total:  5,
		Mapped: 3,
		Severity: map[domain.Severity]int{
			domain.SeverityCritical: 2,
			domain.SeverityHigh:     1,
			domain.SeverityMedium:   0,
			domain.SeverityLow:      2,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(200), exports.lastLimit.Load())
}

func TestStats_BothSourcesDown(t *testing.T) {
	p, _ := newPipeline(&mockExports{}, &mockFeeds{}, defaultLimits)

	got := p.Stats(context.Background())

	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Mapped)
	assert.Len(t, got.Severity, 4)
}

// --- readiness ---

func TestCheckReadiness(t *testing.T) {
	exports := &mockExports{}
	p, _ := newPipeline(exports, &mockFeeds{}, defaultLimits)

	require.NoError(t, p.CheckReadiness(context.Background()), "ready before first pass")

	p.Stats(context.Background())
	require.Error(t, p.CheckReadiness(context.Background()))

	exports.events = []domain.Event{event("g_1", domain.SeverityLow)}
	p.Stats(context.Background())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}
