// Package chat ties intent detection, retrieval and the completion service
// into grounded answers, and renders retrieved products into the strict
// context block the model is allowed to quote from.
package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopassist-ai/shopassist/internal/storage"
)

// Context block delimiters. The model sees an explicit, unambiguous signal in
// both directions: a framed product list, or a distinct empty marker. An
// absent section could be filled in by hallucination; these never are.
const (
	productsHeader = "=== AVAILABLE PRODUCTS ==="
	productsFooter = "=== END OF PRODUCTS ==="
	emptyMarker    = "=== NO PRODUCTS FOUND ==="
)

var multiSpacePattern = regexp.MustCompile(`\s+`)

// FormatProducts renders products into the grounding context block. An empty
// list produces the distinct no-products marker, never an empty section.
func FormatProducts(products []*storage.Product) string {
	if len(products) == 0 {
		return emptyMarker + "\nNo products matched the customer's query. Say so honestly and suggest the customer rephrase or broaden their search."
	}

	var b strings.Builder
	b.WriteString(productsHeader)
	b.WriteString("\n")

	for i, p := range products {
		brand := "N/A"
		if p.Brand != nil && *p.Brand != "" {
			brand = *p.Brand
		}

		stock := "Out of Stock"
		if p.InStock() {
			stock = "In Stock"
		}

		fmt.Fprintf(&b, "\n%d. Product: %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   Brand: %s\n", brand)
		fmt.Fprintf(&b, "   Price: €%.2f\n", p.Price)
		fmt.Fprintf(&b, "   Rating: %.1f/5\n", p.Rating)
		fmt.Fprintf(&b, "   Description: %s\n", trimDescription(p.Description))
		fmt.Fprintf(&b, "   Stock: %s\n", stock)
	}

	b.WriteString("\n")
	b.WriteString(productsFooter)
	return b.String()
}

var productLinePattern = regexp.MustCompile(`^\d+\. Product: (.+)$`)

// ParseProductNames recovers the exact product names from a formatted context
// block. Formatting then parsing yields the original names unchanged; the
// grounding validator relies on this round trip.
func ParseProductNames(block string) []string {
	var names []string
	for _, line := range strings.Split(block, "\n") {
		if m := productLinePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// IsEmptyContext reports whether a formatted block is the no-products marker.
func IsEmptyContext(block string) bool {
	return strings.HasPrefix(block, emptyMarker)
}

func trimDescription(desc string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(desc, " "))
}
