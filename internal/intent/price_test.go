package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPriceRange_UpperBound(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantMax float64
	}{
		{"under", "laptops under 1000", 1000},
		{"under with euro", "laptops under €1000", 1000},
		{"under with dollar", "laptops under $999", 999},
		{"below", "phones below 500 euros", 500},
		{"less than", "something less than 250", 250},
		{"max", "max 300 please", 300},
		{"maximum", "maximum €150", 150},
		{"mixed case", "Under 1000 Euros", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ExtractPriceRange(tt.message)
			require.NotNil(t, r.Max)
			assert.Equal(t, tt.wantMax, *r.Max)
			assert.Nil(t, r.Min)
		})
	}
}

func TestExtractPriceRange_ExplicitRange(t *testing.T) {
	r := ExtractPriceRange("show me phones between 200 and 600")
	require.NotNil(t, r.Min)
	require.NotNil(t, r.Max)
	assert.Equal(t, 200.0, *r.Min)
	assert.Equal(t, 600.0, *r.Max)
}

func TestExtractPriceRange_InvertedRangeKeptAsGiven(t *testing.T) {
	// "between 600 and 200" is not reordered; the empty result it produces is
	// more honest than silently guessing what the user meant.
	r := ExtractPriceRange("between 600 and 200")
	require.NotNil(t, r.Min)
	require.NotNil(t, r.Max)
	assert.Equal(t, 600.0, *r.Min)
	assert.Equal(t, 200.0, *r.Max)
	assert.False(t, r.Contains(400))
}

func TestExtractPriceRange_LowerBound(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantMin float64
	}{
		{"above", "TVs above 800", 800},
		{"over", "something over €1200", 1200},
		{"more than", "more than 50", 50},
		{"minimum", "minimum 100", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ExtractPriceRange(tt.message)
			require.NotNil(t, r.Min)
			assert.Equal(t, tt.wantMin, *r.Min)
			assert.Nil(t, r.Max)
		})
	}
}

func TestExtractPriceRange_UpperBoundWinsOverRange(t *testing.T) {
	// Cascade order: an upper-bound phrase is honored before a range phrase.
	r := ExtractPriceRange("under 500 or between 100 and 900")
	require.NotNil(t, r.Max)
	assert.Equal(t, 500.0, *r.Max)
	assert.Nil(t, r.Min)
}

func TestExtractPriceRange_NoConstraint(t *testing.T) {
	for _, msg := range []string{"show me laptops", "what do you have", ""} {
		r := ExtractPriceRange(msg)
		assert.False(t, r.Bounded(), "message %q", msg)
	}
}

func TestPriceRange_Contains(t *testing.T) {
	min, max := 100.0, 500.0

	unbounded := PriceRange{}
	assert.True(t, unbounded.Contains(0))
	assert.True(t, unbounded.Contains(99999))

	capped := PriceRange{Max: &max}
	assert.True(t, capped.Contains(500), "bounds are inclusive")
	assert.False(t, capped.Contains(500.01))

	floored := PriceRange{Min: &min}
	assert.True(t, floored.Contains(100))
	assert.False(t, floored.Contains(99.99))

	both := PriceRange{Min: &min, Max: &max}
	assert.True(t, both.Contains(300))
	assert.False(t, both.Contains(50))
	assert.False(t, both.Contains(600))
}

func TestPriceRange_Bounded(t *testing.T) {
	v := 10.0
	assert.False(t, PriceRange{}.Bounded())
	assert.True(t, PriceRange{Min: &v}.Bounded())
	assert.True(t, PriceRange{Max: &v}.Bounded())
	assert.True(t, PriceRange{Min: &v, Max: &v}.Bounded())
}
