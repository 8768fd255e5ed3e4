// Package gdelt fetches the latest GDELT 2.0 event export and normalizes its
// rows into domain events.
package gdelt

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/httpclient"
	"github.com/couchcryptid/vigil-events/internal/observability"
)

const sourceLabel = "gdelt"

var (
	// ErrNoExportListed means the pointer document names no export archive.
	ErrNoExportListed = errors.New("pointer document lists no event export")
	// ErrEmptyArchive means the export archive contains no files.
	ErrEmptyArchive = errors.New("export archive is empty")
)

// Options configures a Client.
type Options struct {
	LastUpdateURL   string
	Timeout         time.Duration
	MaxArchiveBytes int64
}

// Client implements the knowledge-base source for the pipeline.
type Client struct {
	lastUpdateURL   string
	timeout         time.Duration
	maxArchiveBytes int64
	httpClient      *http.Client
	geocoder        domain.Geocoder
	clock           clockwork.Clock
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// NewClient creates a GDELT client. Pass a nil geocoder to disable country
// backfill.
func NewClient(opts Options, geocoder domain.Geocoder, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		lastUpdateURL:   opts.LastUpdateURL,
		timeout:         opts.Timeout,
		maxArchiveBytes: opts.MaxArchiveBytes,
		httpClient:      httpclient.New(opts.Timeout),
		geocoder:        geocoder,
		clock:           clock,
		logger:          logger.With("source", sourceLabel),
		metrics:         metrics,
	}
}

// Fetch returns up to limit events from the latest export. It never fails:
// any transport or format problem is logged and yields an empty slice.
func (c *Client) Fetch(ctx context.Context, limit int) []domain.Event {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	events, err := c.fetch(ctx, limit)
	c.metrics.SourceFetchDuration.WithLabelValues(sourceLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("gdelt fetch failed", "error", err)
		c.metrics.SourceFetches.WithLabelValues(sourceLabel, "error").Inc()
		return []domain.Event{}
	}

	c.metrics.SourceFetches.WithLabelValues(sourceLabel, "success").Inc()
	c.metrics.EventsIngested.WithLabelValues(sourceLabel).Add(float64(len(events)))
	return events
}

func (c *Client) fetch(ctx context.Context, limit int) ([]domain.Event, error) {
	exportURL, err := c.latestExportURL(ctx)
	if err != nil {
		return nil, err
	}

	archive, err := c.download(ctx, exportURL)
	if err != nil {
		return nil, err
	}

	events, stats, err := parseArchive(archive, limit, c.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("parse export %s: %w", exportURL, err)
	}
	for reason, n := range stats.rejected {
		c.metrics.RowsRejected.WithLabelValues(reason).Add(float64(n))
	}
	c.logger.Debug("gdelt export parsed",
		"url", exportURL,
		"rows_scanned", stats.scanned,
		"rows_accepted", stats.accepted,
		"events", len(events),
	)

	for i := range events {
		events[i] = domain.EnrichWithGeocoding(ctx, events[i], c.geocoder, c.logger)
	}
	return events, nil
}

// latestExportURL reads the pointer document and returns the trailing URL
// token of the first line mentioning the event export.
func (c *Client) latestExportURL(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.lastUpdateURL, 1<<20)
	if err != nil {
		return "", err
	}
	return ExportURLFromPointer(body)
}

// ExportURLFromPointer picks the export URL out of a lastupdate document.
func ExportURLFromPointer(doc []byte) (string, error) {
	sc := bufio.NewScanner(bytes.NewReader(doc))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(strings.ToLower(line), "export") {
			continue
		}
		fields := strings.Fields(line)
		return fields[len(fields)-1], nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read pointer document: %w", err)
	}
	return "", ErrNoExportListed
}

func (c *Client) download(ctx context.Context, exportURL string) ([]byte, error) {
	return c.get(ctx, exportURL, c.maxArchiveBytes)
}

func (c *Client) get(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("get %s: response exceeds %d bytes", url, maxBytes)
	}
	return body, nil
}

type parseStats struct {
	scanned  int
	accepted int
	rejected map[string]int
}

// parseArchive reads the sole file of a zipped export. It scans at most
// limit*2 rows so rejected rows do not starve the result, then truncates
// to limit.
func parseArchive(archive []byte, limit int, ingestedAt time.Time) ([]domain.Event, parseStats, error) {
	stats := parseStats{rejected: map[string]int{}}
	limit = max(limit, 0)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, stats, fmt.Errorf("open archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, stats, ErrEmptyArchive
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return nil, stats, fmt.Errorf("open %s: %w", zr.File[0].Name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	events := make([]domain.Event, 0, limit)
	for stats.scanned < limit*2 {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.scanned++

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			stats.rejected["malformed"]++
			continue
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.scanned, err)
		}

		event, err := domain.ParseExportRow(domain.Row(rec), ingestedAt)
		if err != nil {
			stats.rejected[rejectReason(err)]++
			continue
		}
		stats.accepted++
		events = append(events, event)
	}

	if len(events) > limit {
		events = events[:limit]
	}
	return events, stats, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrShortRow):
		return "short"
	case errors.Is(err, domain.ErrNoCoordinates):
		return "no_coordinates"
	case errors.Is(err, domain.ErrMissingID):
		return "missing_id"
	default:
		return "other"
	}
}
