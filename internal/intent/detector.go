// Package intent classifies inbound chat messages: whether a catalog search is
// warranted, what price constraint the user stated, and which words carry
// product meaning once price and filler phrasing is stripped.
package intent

import "strings"

// searchTriggers is the fixed trigger list for search intent. The list is
// deliberately broad: a false positive costs one cheap query that degrades to
// an empty result, while a false negative skips a search the user wanted.
var searchTriggers = []string{
	// purchase verbs
	"show me",
	"find",
	"looking for",
	"need",
	"want",
	"buy",
	"recommend",
	"suggest",
	// comparison and budget terms
	"best",
	"cheapest",
	"affordable",
	"under",
	"below",
	"budget",
	"price",
	// category nouns
	"laptop",
	"phone",
	"smartphone",
	"tv",
	"headphone",
}

// DetectSearch reports whether the message warrants a catalog lookup. The
// check is a case-insensitive substring match against the trigger list.
func DetectSearch(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range searchTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
