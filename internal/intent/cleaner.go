package intent

import (
	"regexp"
	"strings"
)

// cleanRule is one normalization step applied to a raw query before lexical or
// pattern matching. Rules run in declaration order.
type cleanRule struct {
	name    string
	pattern *regexp.Regexp
}

var cleanRules = []cleanRule{
	{
		name:    "price_words",
		pattern: regexp.MustCompile(`\b(under|below|above|over|between|around|approximately|euros?|eur|dollars?|price|budget|max|min|maximum|minimum)\b`),
	},
	{
		name:    "currency_symbols",
		pattern: regexp.MustCompile(`[€$]`),
	},
	{
		name:    "numbers",
		pattern: regexp.MustCompile(`\b\d+\b`),
	},
	{
		name:    "filler_words",
		pattern: regexp.MustCompile(`\b(show|find|get|give|tell|looking|need|want|me|my|for|a|an|the|some|any)\b`),
	},
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// CleanQuery strips price phrasing, bare numbers, and filler words from a
// query, leaving the words that carry product meaning. "Show me laptops under
// 1000 euros" becomes "laptops". The result may be empty.
func CleanQuery(query string) string {
	cleaned := strings.ToLower(query)
	for _, rule := range cleanRules {
		cleaned = rule.pattern.ReplaceAllString(cleaned, " ")
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
}
