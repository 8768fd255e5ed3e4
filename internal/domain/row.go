package domain

import (
	"math"
	"strconv"
	"strings"
)

// Row is one tab-separated record from a knowledge-base export. Columns are
// positional; accessors report absence instead of failing when a row is
// shorter than the requested column or the value does not parse.
type Row []string

// Len returns the number of columns present.
func (r Row) Len() int { return len(r) }

// String returns the trimmed value at col. ok is false when the column is
// beyond the row or empty.
func (r Row) String(col int) (string, bool) {
	if col < 0 || col >= len(r) {
		return "", false
	}
	v := strings.TrimSpace(r[col])
	return v, v != ""
}

// StringOr returns the value at col or fallback when absent.
func (r Row) StringOr(col int, fallback string) string {
	if v, ok := r.String(col); ok {
		return v
	}
	return fallback
}

// Float parses the value at col. NaN and infinities count as absent.
func (r Row) Float(col int) (float64, bool) {
	s, ok := r.String(col)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int parses the value at col as a base-10 integer.
func (r Row) Int(col int) (int, bool) {
	s, ok := r.String(col)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
