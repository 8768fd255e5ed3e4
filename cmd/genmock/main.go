// Command genmock writes a deterministic upstream fixture set: a GDELT
// lastupdate pointer, the zipped export it names, and RSS/Atom feeds. It
// also writes manifest.json with the counts the service's own parsers
// produce from those files, which cmd/validate checks against.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -base-url http://localhost:8090
//
// Serve the output directory with any static file server and point
// GDELT_LASTUPDATE_URL and FEED_URLS at it.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/mockdata"
)

// exportName is the archive file the pointer document names.
const exportName = "20240101120000.export.CSV.zip"

var ingestedAt = time.Date(2024, time.January, 1, 12, 15, 0, 0, time.UTC)

// Manifest records what the parsers make of the fixture set.
type Manifest struct {
	ExportName     string                  `json:"export_name"`
	ExportRows     int                     `json:"export_rows"`
	ExportAccepted int                     `json:"export_accepted"`
	ExportRejected map[string]int          `json:"export_rejected"`
	ExportSeverity map[domain.Severity]int `json:"export_severity"`
	Feeds          []string                `json:"feeds"`
	FeedEntries    int                     `json:"feed_entries"`
	FeedUnique     int                     `json:"feed_unique"`
	FeedMaxEntries int                     `json:"feed_max_entries"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the fixture set")
	baseURL := flag.String("base-url", "http://localhost:8090", "URL the output directory will be served from")
	maxEntries := flag.Int("max-entries", 15, "per-feed entry cap used when computing the manifest")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rows := exportRows()
	archive, err := mockdata.ZipExport("20240101120000.export.CSV", mockdata.TSV(rows...))
	if err != nil {
		return fmt.Errorf("build export archive: %w", err)
	}

	files := map[string][]byte{
		"lastupdate.txt": []byte(mockdata.PointerDocument(*baseURL, *baseURL+"/"+exportName)),
		exportName:       archive,
	}
	feedDocs := feedDocuments()
	feedNames := make([]string, 0, len(feedDocs))
	for _, d := range feedDocs {
		files[d.path] = []byte(d.body)
		feedNames = append(feedNames, d.path)
	}

	for name, data := range files {
		if err := writeFile(filepath.Join(*out, name), data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Printf("wrote %s (%d bytes)", name, len(data))
	}

	manifest := buildManifest(rows, feedDocs, *maxEntries)
	manifest.Feeds = feedNames
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFile(filepath.Join(*out, "manifest.json"), append(data, '\n')); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	log.Printf("export: %d rows, %d accepted, rejected %v", manifest.ExportRows, manifest.ExportAccepted, manifest.ExportRejected)
	log.Printf("feeds: %d entries, %d unique", manifest.FeedEntries, manifest.FeedUnique)
	return nil
}

// buildManifest runs the domain parsers over the fixture inputs.
func buildManifest(rows []mockdata.ExportRow, docs []feedDoc, maxEntries int) Manifest {
	m := Manifest{
		ExportName:     exportName,
		ExportRows:     len(rows),
		ExportRejected: map[string]int{},
		ExportSeverity: map[domain.Severity]int{},
		FeedMaxEntries: maxEntries,
		GeneratedAt:    ingestedAt,
	}
	for _, r := range rows {
		e, err := domain.ParseExportRow(domain.Row(r.Fields()), ingestedAt)
		if err != nil {
			m.ExportRejected[rejectLabel(err)]++
			continue
		}
		m.ExportAccepted++
		m.ExportSeverity[e.Severity]++
	}

	batches := make([][]domain.Event, 0, len(docs))
	for _, d := range docs {
		items := d.items
		if len(items) > maxEntries {
			items = items[:maxEntries]
		}
		batch := make([]domain.Event, 0, len(items))
		for _, it := range items {
			batch = append(batch, domain.ParseFeedEntry(domain.FeedEntry{Title: it.Title, Link: it.Link}, domain.FeedSourceName(d.path), ingestedAt))
		}
		m.FeedEntries += len(batch)
		batches = append(batches, batch)
	}
	unique, _ := domain.MergeUnique(batches)
	m.FeedUnique = len(unique)
	return m
}

func rejectLabel(err error) string {
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

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
