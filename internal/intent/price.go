package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceRange holds an optional price constraint extracted from a message.
// Either bound may be nil.
type PriceRange struct {
	Min *float64
	Max *float64
}

// Bounded reports whether at least one bound is set.
func (r PriceRange) Bounded() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether a price satisfies the constraint. Bounds are
// inclusive; a nil bound is unconstrained.
func (r PriceRange) Contains(price float64) bool {
	if r.Min != nil && price < *r.Min {
		return false
	}
	if r.Max != nil && price > *r.Max {
		return false
	}
	return true
}

// Price patterns, checked in a fixed cascade. The currency symbol before the
// number is optional and ignored.
var (
	maxPricePattern   = regexp.MustCompile(`(?:under|below|less than|max|maximum)\s*[€$]?\s*(\d+)`)
	rangePricePattern = regexp.MustCompile(`between\s*[€$]?\s*(\d+)\s*and\s*[€$]?\s*(\d+)`)
	minPricePattern   = regexp.MustCompile(`(?:above|over|more than|min|minimum)\s*[€$]?\s*(\d+)`)
)

// ExtractPriceRange parses a price constraint from free text. Only the first
// matching pattern type is honored, in the order: upper bound, explicit range,
// lower bound. A "between X and Y" phrase with X > Y is passed through as
// given rather than reordered.
func ExtractPriceRange(message string) PriceRange {
	lower := strings.ToLower(message)

	if m := maxPricePattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return PriceRange{Max: &v}
		}
	}

	if m := rangePricePattern.FindStringSubmatch(lower); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			return PriceRange{Min: &lo, Max: &hi}
		}
	}

	if m := minPricePattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return PriceRange{Min: &v}
		}
	}

	return PriceRange{}
}

