package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRow_String(t *testing.T) {
	row := Row{"a", "  b  ", "", "d"}

	v, ok := row.String(1)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = row.String(2)
	assert.False(t, ok, "empty column is absent")

	_, ok = row.String(10)
	assert.False(t, ok, "column beyond row is absent")

	_, ok = row.String(-1)
	assert.False(t, ok)

	assert.Equal(t, "fallback", row.StringOr(42, "fallback"))
	assert.Equal(t, "d", row.StringOr(3, "fallback"))
}

func TestRow_Float(t *testing.T) {
	row := Row{"12.5", "-0.25", "abc", "", "NaN", "+Inf", "1e3"}

	tests := []struct {
		name     string
		col      int
		expected float64
		ok       bool
	}{
		{"positive", 0, 12.5, true},
		{"negative", 1, -0.25, true},
		{"garbage", 2, 0, false},
		{"empty", 3, 0, false},
		{"nan", 4, 0, false},
		{"infinity", 5, 0, false},
		{"exponent", 6, 1000, true},
		{"out of range", 99, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := row.Float(tt.col)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestRow_Int(t *testing.T) {
	row := Row{"4", "4.0", "x"}

	v, ok := row.Int(0)
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = row.Int(1)
	assert.False(t, ok)

	_, ok = row.Int(2)
	assert.False(t, ok)

	_, ok = row.Int(3)
	assert.False(t, ok)
}
