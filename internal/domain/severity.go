package domain

import "strings"

// Severity is the four-level classification shared by every source.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists the levels from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities for sorting: critical=0 through low=3. Anything
// else sorts last with rank 4.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	return s.Rank() < 4
}

// ClassifyExport scores a knowledge-base event from its CAMEO root code,
// quad class and Goldstein score. quad is 0 when absent; goldstein is 0 when
// absent or unparseable.
//
// Root codes take priority: 18-20 critical, 15-17 high, 13-14 medium. After
// that material conflict (quad 4) and verbal conflict (quad 3) use their own
// Goldstein thresholds, and everything else falls through to the general
// scale which is the only path that can produce low.
func ClassifyExport(rootCode string, quad int, goldstein float64) Severity {
	switch strings.TrimSpace(rootCode) {
	case "18", "19", "20":
		return SeverityCritical
	case "15", "16", "17":
		return SeverityHigh
	case "13", "14":
		return SeverityMedium
	}

	switch quad {
	case 4:
		switch {
		case goldstein < -5:
			return SeverityCritical
		case goldstein < -2:
			return SeverityHigh
		default:
			return SeverityMedium
		}
	case 3:
		if goldstein < -3 {
			return SeverityHigh
		}
		return SeverityMedium
	}

	switch {
	case goldstein < -6:
		return SeverityCritical
	case goldstein < -3:
		return SeverityHigh
	case goldstein < 0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Headline lexicons, checked in order. Matching is plain substring
// containment on the lowercased title, so "wars" matches "war".
var (
	criticalTerms = []string{"killed", "dead", "massacre", "attack", "bombing", "explosion"}
	highTerms     = []string{"war", "conflict", "violence", "protest", "crisis"}
	mediumTerms   = []string{"tension", "threat", "dispute", "sanction"}
)

// ClassifyHeadline scores a feed entry from its title.
func ClassifyHeadline(title string) Severity {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, criticalTerms):
		return SeverityCritical
	case containsAny(t, highTerms):
		return SeverityHigh
	case containsAny(t, mediumTerms):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
