package main

import "github.com/couchcryptid/vigil-events/internal/mockdata"

// exportRows covers every classification path plus each rejection reason.
func exportRows() []mockdata.ExportRow {
	base := func(id, actor, root, quad, goldstein, country string) mockdata.ExportRow {
		return mockdata.ExportRow{
			ID:         id,
			Actor:      actor,
			RootCode:   root,
			QuadClass:  quad,
			Goldstein:  goldstein,
			PrimaryLat: "15.5007",
			PrimaryLng: "32.5599",
			Country:    country,
			DateAdded:  "20240101120000",
			SourceURL:  "https://news.example/" + id,
		}
	}

	rows := []mockdata.ExportRow{
		base("1100000001", "MILITARY", "19", "4", "-10", "Sudan"),
		base("1100000002", "POLICE", "17", "4", "-5", "Kenya"),
		base("1100000003", "PROTESTERS", "14", "3", "-6.5", "France"),
		base("1100000004", "GOVERNMENT", "04", "1", "1.0", "Japan"),
		base("1100000005", "INSURGENTS", "10", "4", "-7", "Mali"),
		base("1100000006", "MINISTRY", "11", "3", "-4", "Chile"),
		base("1100000007", "", "05", "2", "-8", "Peru"),
		base("1100000008", "CITIZENS", "03", "1", "-1", ""),
	}

	// Primary pair missing, fallback pair present.
	fallback := base("1100000009", "REBELS", "20", "4", "-10", "Somalia")
	fallback.PrimaryLat, fallback.PrimaryLng = "", ""
	fallback.FallbackLat, fallback.FallbackLng = "2.0469", "45.3182"

	// No DATEADDED: published_at falls back to ingestion time.
	undated := base("1100000010", "FARMERS", "02", "1", "2", "India")
	undated.DateAdded = ""

	zero := base("1100000011", "NAVY", "19", "4", "-10", "")
	zero.PrimaryLat, zero.PrimaryLng = "0", "0"

	short := base("1100000012", "ARMY", "19", "4", "-10", "Syria")
	short.Columns = 57

	missingID := base("", "ARMY", "19", "4", "-10", "Syria")

	return append(rows, fallback, undated, zero, short, missingID)
}

type feedDoc struct {
	path  string
	body  string
	items []mockdata.Item
}

// feedDocuments returns two RSS feeds sharing one story and an Atom feed.
// The first feed exceeds the per-feed cap.
func feedDocuments() []feedDoc {
	shared := mockdata.Item{Title: "Sanctions dispute deepens", Link: "https://wire.example/shared"}

	bbc := append([]mockdata.Item{
		{Title: "Bombing near market leaves dozens dead", Link: "https://bbc.example/world/1"},
		{Title: "Border conflict escalates", Link: "https://bbc.example/world/2"},
		shared,
	}, mockdata.Items(14, "https://bbc.example/world/misc")...)

	reuters := []mockdata.Item{
		shared,
		{Title: "Protest turns violent in capital", Link: "https://reuters.example/3"},
		{Title: "Central bank holds rates", Link: "https://reuters.example/4"},
	}

	wire := []mockdata.Item{
		{Title: "Rising tension over fishing rights", Link: "https://aljazeera.example/5"},
		{Title: "Explosion at chemical plant", Link: "https://aljazeera.example/6"},
	}

	return []feedDoc{
		{path: "feeds/bbc/world.xml", body: mockdata.RSS("BBC News - World", bbc...), items: bbc},
		{path: "feeds/reuters/world.xml", body: mockdata.RSS("Reuters World", reuters...), items: reuters},
		{path: "feeds/aljazeera/all.xml", body: mockdata.Atom("Al Jazeera", wire...), items: wire},
	}
}
