package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"price phrase stripped", "Show me laptops under 1000 euros", "laptops"},
		{"currency symbols stripped", "phones below €500", "phones"},
		{"dollar and number stripped", "tv under $300", "tv"},
		{"filler words stripped", "find me a wireless headset", "wireless headset"},
		{"product words survive", "cheapest gaming laptop", "cheapest gaming laptop"},
		{"range phrase stripped", "smartphones between 200 and 600", "smartphones and"},
		{"only price words", "under 1000", ""},
		{"whitespace collapsed", "  show   me   laptops  ", "laptops"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.query))
		})
	}
}

func TestCleanQuery_Lowercases(t *testing.T) {
	assert.Equal(t, "macbook pro", CleanQuery("MacBook Pro"))
}

func TestCleanQuery_NumbersInsideWordsKept(t *testing.T) {
	// Only standalone numbers are price noise; model names like "ps5" stay.
	assert.Equal(t, "ps5 console", CleanQuery("ps5 console under 500"))
}
