// Package mockdata builds upstream-shaped fixtures: GDELT export rows,
// zipped exports, lastupdate pointer documents and RSS/Atom feeds. It is
// shared by tests and cmd/genmock and deliberately knows nothing about the
// domain package, so fixtures describe the wire format rather than our
// parsing of it.
package mockdata

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// ExportColumns is the width of a GDELT 2.0 event export row.
const ExportColumns = 61

// ExportRow describes one export row by the columns the service reads.
// Columns, when non-zero, truncates or pads the rendered row.
type ExportRow struct {
	ID          string
	Actor       string
	RootCode    string
	QuadClass   string
	Goldstein   string
	FallbackLat string
	FallbackLng string
	PrimaryLat  string
	PrimaryLng  string
	Country     string
	DateAdded   string
	SourceURL   string
	Columns     int
}

// Fields renders the row as positional columns.
func (r ExportRow) Fields() []string {
	f := make([]string, ExportColumns)
	f[0] = r.ID
	f[6] = r.Actor
	f[28] = r.RootCode
	f[29] = r.QuadClass
	f[30] = r.Goldstein
	f[40] = r.FallbackLat
	f[41] = r.FallbackLng
	f[53] = r.PrimaryLat
	f[54] = r.PrimaryLng
	f[56] = r.Country
	f[59] = r.DateAdded
	f[60] = r.SourceURL

	switch {
	case r.Columns == 0:
		return f
	case r.Columns <= len(f):
		return f[:r.Columns]
	default:
		return append(f, make([]string, r.Columns-len(f))...)
	}
}

// TSV joins rows into a headerless tab-separated document.
func TSV(rows ...ExportRow) []byte {
	var b bytes.Buffer
	for _, r := range rows {
		b.WriteString(strings.Join(r.Fields(), "\t"))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// ZipExport wraps a TSV document in a single-entry zip archive.
func ZipExport(name string, tsv []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := w.Write(tsv); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// PointerDocument renders a lastupdate.txt listing the export at exportURL
// between the mentions and gkg lines, the way GDELT publishes it. The
// mentions and gkg URLs are derived from baseURL.
func PointerDocument(baseURL, exportURL string) string {
	return strings.Join([]string{
		fmt.Sprintf("52179 1f5e8c1a0b2d3e4f5a6b7c8d9e0f1a2b %s/20240101120000.mentions.CSV.zip", baseURL),
		fmt.Sprintf("150383 297a16b493de7cf6ca809a7cc31d0b93 %s", exportURL),
		fmt.Sprintf("10342918 0ad4c6a3d1e2f3a4b5c6d7e8f9a0b1c2 %s/20240101120000.gkg.csv.zip", baseURL),
	}, "\n") + "\n"
}

// Item is one syndication entry.
type Item struct {
	Title string
	Link  string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate,omitempty"`
}

// RSS renders an RSS 2.0 document.
func RSS(title string, items ...Item) string {
	doc := rssDoc{Version: "2.0", Channel: rssChannel{Title: title, Link: "https://example.com/"}}
	for _, it := range items {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:   it.Title,
			Link:    it.Link,
			PubDate: "Mon, 01 Jan 2024 12:00:00 +0000",
		})
	}
	return marshalXML(doc)
}

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title string   `xml:"title"`
	Link  atomLink `xml:"link"`
	ID    string   `xml:"id"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

// Atom renders an Atom 1.0 document.
func Atom(title string, items ...Item) string {
	doc := atomFeed{Title: title}
	for _, it := range items {
		doc.Entries = append(doc.Entries, atomEntry{Title: it.Title, Link: atomLink{Href: it.Link}, ID: it.Link})
	}
	return marshalXML(doc)
}

// Items builds n numbered entries under linkPrefix.
func Items(n int, linkPrefix string) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Title: fmt.Sprintf("Story %d", i+1),
			Link:  fmt.Sprintf("%s/%d", linkPrefix, i+1),
		}
	}
	return items
}

func marshalXML(v any) string {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("mockdata: marshal xml: %v", err))
	}
	return xml.Header + string(out)
}
