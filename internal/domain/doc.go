// Package domain models world events gathered from the GDELT 2.0 event
// export and from news RSS/Atom feeds, normalized into a single [Event].
//
// # GDELT export
//
// GDELT publishes a new export every 15 minutes. A small pointer document
// (lastupdate.txt) lists the latest files, one per line:
//
//	<size> <md5> http://data.gdeltproject.org/gdeltv2/20240101120000.export.CSV.zip
//
// The export archive holds a single headerless tab-separated file. Columns
// are positional and read through [Row], which reports a missing or
// unparseable column as absent rather than failing:
//
//	 0  event id            28  CAMEO root code     40/41  fallback lat/lng
//	 6  actor name          29  quad class (1–4)    53/54  primary lat/lng
//	                        30  Goldstein score     56     country
//	                                                59     DATEADDED (YYYYMMDDHHMMSS)
//	                                                60     source URL
//
// Rows shorter than 58 columns, without an event id, or without a usable
// coordinate pair are rejected individually.
//
// # Severity classification
//
// Both sources map onto four levels: critical, high, medium, low.
//
//	Export:   root code 18–20 critical | 15–17 high | 13–14 medium, then
//	          quad 4:  Goldstein < −5 critical | < −2 high | else medium
//	          quad 3:  Goldstein < −3 high | else medium
//	          other:   Goldstein < −6 critical | < −3 high | < 0 medium | else low
//	Headline: first matching lexicon wins (critical, high, medium), else low.
//
// A missing Goldstein score is read as 0.
//
// # IDs
//
// Export events use "g_" + the export's event id. Feed events use the first
// 12 hex characters of SHA-256(link), so the same article linked from two
// feeds collapses to one event.
package domain
