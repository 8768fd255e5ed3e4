// Command validate runs both source adapters and the view pipeline once and
// checks the normalized-event invariants, printing PASS/FAIL per phase.
//
// Against a genmock fixture set (served from a loopback listener, with the
// pointer document rewritten to that listener):
//
//	go run ./cmd/validate -fixtures data/mock
//
// Against the live upstreams configured through the usual environment
// variables:
//
//	go run ./cmd/validate
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vigil-events/internal/adapter/feeds"
	"github.com/couchcryptid/vigil-events/internal/adapter/gdelt"
	"github.com/couchcryptid/vigil-events/internal/config"
	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/mockdata"
	"github.com/couchcryptid/vigil-events/internal/observability"
	"github.com/couchcryptid/vigil-events/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// manifest mirrors the file genmock writes.
type manifest struct {
	ExportName     string   `json:"export_name"`
	ExportAccepted int      `json:"export_accepted"`
	Feeds          []string `json:"feeds"`
	FeedUnique     int      `json:"feed_unique"`
	FeedMaxEntries int      `json:"feed_max_entries"`
}

func main() {
	fixtures := flag.String("fixtures", "", "genmock output directory; empty validates the configured live sources")
	verbose := flag.Bool("v", false, "log adapter warnings to stderr")
	flag.Parse()

	if code := run(*fixtures, *verbose); code != 0 {
		os.Exit(code)
	}
}

func run(fixtureDir string, verbose bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}

	level := slog.LevelError
	if verbose {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var m *manifest
	if fixtureDir != "" {
		m, err = loadManifest(fixtureDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load manifest: %v\n", err)
			return 1
		}
		baseURL, stop, err := serveFixtures(fixtureDir, m.ExportName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: serve fixtures: %v\n", err)
			return 1
		}
		defer stop()

		cfg.GDELTLastUpdateURL = baseURL + "/lastupdate.txt"
		cfg.FeedURLs = make([]string, len(m.Feeds))
		for i, f := range m.Feeds {
			cfg.FeedURLs[i] = baseURL + "/" + f
		}
		cfg.FeedMaxEntries = m.FeedMaxEntries
	}

	fmt.Println("=== Vigil Events Validation ===")
	fmt.Printf("GDELT pointer: %s\n", cfg.GDELTLastUpdateURL)
	fmt.Printf("Feeds: %s\n", strings.Join(cfg.FeedURLs, ", "))
	fmt.Println()

	ingestedAt := time.Now().UTC().Truncate(time.Second)
	clock := clockwork.NewFakeClockAt(ingestedAt)
	metrics := observability.NewMetricsForTesting()

	exports := gdelt.NewClient(gdelt.Options{
		LastUpdateURL:   cfg.GDELTLastUpdateURL,
		Timeout:         cfg.GDELTTimeout,
		MaxArchiveBytes: cfg.GDELTMaxArchiveBytes,
	}, nil, clock, logger, metrics)
	news := feeds.NewClient(feeds.Options{
		URLs:       cfg.FeedURLs,
		Timeout:    cfg.FeedTimeout,
		MaxEntries: cfg.FeedMaxEntries,
	}, clock, logger, metrics)
	limits := pipeline.Limits{
		Ranked:      cfg.RankedLimit,
		RankedGDELT: cfg.RankedGDELTLimit,
		GeoGDELT:    cfg.GeoGDELTLimit,
		StatsGDELT:  cfg.StatsGDELTLimit,
	}
	p := pipeline.New(exports, news, limits, logger, metrics)

	ctx := context.Background()
	exportEvents := exports.Fetch(ctx, cfg.RankedGDELTLimit)
	feedEvents := news.FetchAll(ctx)
	ranked := p.RankedFeed(ctx)
	points := p.GeoPoints(ctx)
	stats := p.Stats(ctx)

	phases := []*phase{
		validateExportEvents(exportEvents, cfg.RankedGDELTLimit),
		validateFeedEvents(feedEvents, ingestedAt, len(cfg.FeedURLs)*cfg.FeedMaxEntries),
		validateRanked(ranked, cfg.RankedLimit),
		validateGeo(points, cfg.GeoGDELTLimit),
		validateStats(stats),
	}
	if m != nil {
		phases = append(phases, validateManifest(m, exportEvents, feedEvents))
	}

	fmt.Println()
	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", ph.name, status)
	}

	fmt.Println()
	fmt.Printf("Events: %d knowledge-base, %d feed; views: %d ranked, %d geo, stats total %d\n",
		len(exportEvents), len(feedEvents), len(ranked), len(points), stats.Total)

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// ── Fixtures ──

func loadManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// serveFixtures serves dir on a loopback port. The pointer document is
// generated per request so it names the listener's own URL.
func serveFixtures(dir, exportName string) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	baseURL := "http://" + ln.Addr().String()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /lastupdate.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, mockdata.PointerDocument(baseURL, baseURL+"/"+exportName))
	})
	mux.Handle("GET /", http.FileServer(http.Dir(dir)))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return baseURL, stop, nil
}

// ── Phases ──

var feedIDPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

func validateExportEvents(events []domain.Event, limit int) *phase {
	p := &phase{name: "Phase 1: knowledge-base events"}
	if len(events) > limit {
		p.errorf("%d events exceed limit %d", len(events), limit)
	}
	seen := map[string]bool{}
	for i := range events {
		e := &events[i]
		pf := func(format string, args ...any) {
			p.errorf("event %d (ID %s): "+format, append([]any{i, e.ID}, args...)...)
		}
		checkCommon(pf, e)
		if !strings.HasPrefix(e.ID, domain.ExportIDPrefix) || len(e.ID) == len(domain.ExportIDPrefix) {
			pf("id lacks %q prefix or is empty after it", domain.ExportIDPrefix)
		}
		if e.Source != domain.SourceGDELT {
			pf("source %q, expected %q", e.Source, domain.SourceGDELT)
		}
		if _, _, ok := e.Coordinates(); !ok {
			pf("coordinates missing or zero")
		}
		if seen[e.ID] {
			pf("duplicate id within one export")
		}
		seen[e.ID] = true
	}
	return p
}

func validateFeedEvents(events []domain.Event, ingestedAt time.Time, maxEntries int) *phase {
	p := &phase{name: "Phase 2: feed events"}
	if len(events) > maxEntries {
		p.errorf("%d events exceed %d (feeds × per-feed cap)", len(events), maxEntries)
	}
	seen := map[string]bool{}
	for i := range events {
		e := &events[i]
		pf := func(format string, args ...any) {
			p.errorf("event %d (ID %s): "+format, append([]any{i, e.ID}, args...)...)
		}
		checkCommon(pf, e)
		if !feedIDPattern.MatchString(e.ID) {
			pf("id is not 12 lowercase hex characters")
		}
		if e.Lat != nil || e.Lng != nil {
			pf("feed events must not carry coordinates")
		}
		if !e.PublishedAt.Equal(ingestedAt) {
			pf("published_at %s, expected ingestion time %s", e.PublishedAt, ingestedAt)
		}
		if seen[e.ID] {
			pf("duplicate id survived merge")
		}
		seen[e.ID] = true
	}
	return p
}

func validateRanked(events []domain.Event, limit int) *phase {
	p := &phase{name: "Phase 3: ranked view"}
	if len(events) > limit {
		p.errorf("%d events exceed limit %d", len(events), limit)
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].Severity.Rank() > events[i].Severity.Rank() {
			p.errorf("event %d (%s) ranked before more severe event %d (%s)",
				i-1, events[i-1].Severity, i, events[i].Severity)
		}
	}
	return p
}

func validateGeo(points []domain.GeoPoint, limit int) *phase {
	p := &phase{name: "Phase 4: geo view"}
	if len(points) > limit {
		p.errorf("%d points exceed knowledge-base limit %d", len(points), limit)
	}
	for i, pt := range points {
		if pt.Lat == 0 || pt.Lng == 0 {
			p.errorf("point %d (ID %s): zero coordinate", i, pt.ID)
		}
		if !pt.Severity.Valid() {
			p.errorf("point %d (ID %s): severity %q invalid", i, pt.ID, pt.Severity)
		}
	}
	return p
}

func validateStats(s domain.Stats) *phase {
	p := &phase{name: "Phase 5: stats view"}
	sum := 0
	for _, sev := range domain.Severities {
		n, ok := s.Severity[sev]
		if !ok {
			p.errorf("severity bucket %q missing", sev)
		}
		sum += n
	}
	if len(s.Severity) != len(domain.Severities) {
		p.errorf("%d severity buckets, expected %d", len(s.Severity), len(domain.Severities))
	}
	if sum != s.Total {
		p.errorf("severity buckets sum to %d, total is %d", sum, s.Total)
	}
	if s.Mapped > s.Total {
		p.errorf("mapped %d exceeds total %d", s.Mapped, s.Total)
	}
	return p
}

func validateManifest(m *manifest, exportEvents, feedEvents []domain.Event) *phase {
	p := &phase{name: "Phase 6: fixture manifest"}
	if len(exportEvents) != m.ExportAccepted {
		p.errorf("knowledge-base events %d, manifest expects %d", len(exportEvents), m.ExportAccepted)
	}
	if len(feedEvents) != m.FeedUnique {
		p.errorf("feed events %d, manifest expects %d", len(feedEvents), m.FeedUnique)
	}
	return p
}

func checkCommon(pf func(string, ...any), e *domain.Event) {
	if e.ID == "" {
		pf("id is empty")
	}
	if !e.Severity.Valid() {
		pf("severity %q not in {critical, high, medium, low}", e.Severity)
	}
	if utf8.RuneCountInString(e.Title) > domain.MaxTitleLength {
		pf("title longer than %d runes", domain.MaxTitleLength)
	}
	if e.PublishedAt.IsZero() {
		pf("published_at is zero")
	}
	if (e.Lat == nil) != (e.Lng == nil) {
		pf("only one coordinate present")
	}
}
