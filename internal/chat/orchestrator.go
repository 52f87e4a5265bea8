package chat

import (
	"context"
	"strings"
	"time"

	"github.com/shopassist-ai/shopassist/internal/intent"
	"github.com/shopassist-ai/shopassist/internal/llm"
	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/retrieval"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// systemPrompt is the fixed instruction the model always receives. The
// grounding rules keep it from inventing products the retrieval did not find.
const systemPrompt = `You are ShopAssist AI, a helpful customer support assistant for an electronics retail company.

CRITICAL RULES:
1. ONLY recommend products from the "Available Products" context provided below
2. NEVER make up product names, prices, or features
3. If no products match, say so honestly and suggest alternatives
4. Always mention exact prices in euros (€)
5. Be conversational and helpful, not robotic

You help customers with:
- Finding products (laptops, phones, TVs, headphones, etc.)
- Product comparisons and recommendations
- Explaining specifications
- Price ranges and budgets

Guidelines:
- Be friendly and concise
- Ask clarifying questions when needed
- Compare products when relevant
- Highlight key features that matter to the user`

// Searcher runs the retrieval cascade.
type Searcher interface {
	Search(ctx context.Context, rawQuery string, bounds intent.PriceRange) ([]retrieval.ScoredProduct, error)
}

// Answer is the orchestrator's result: the reply text and the products shown
// alongside it in the UI.
type Answer struct {
	Reply     string
	Products  []*storage.Product
	Timestamp time.Time
}

// Config holds orchestrator settings.
type Config struct {
	// TopProducts caps how many retrieved products are surfaced to the caller.
	TopProducts int
}

// Orchestrator produces grounded answers for inbound chat messages.
type Orchestrator struct {
	logger      *observability.Logger
	searcher    Searcher
	completions llm.CompletionService
	config      Config
}

// NewOrchestrator creates a grounded chat orchestrator.
func NewOrchestrator(logger *observability.Logger, searcher Searcher, completions llm.CompletionService, cfg Config) *Orchestrator {
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = 3
	}
	return &Orchestrator{
		logger:      logger.WithComponent("chat"),
		searcher:    searcher,
		completions: completions,
		config:      cfg,
	}
}

// Respond answers one inbound message. When the message warrants a catalog
// search, the retrieved products are rendered into the grounding context and
// the same products (capped) are returned to the caller — the model never sees
// products the caller does not also receive.
func (o *Orchestrator) Respond(ctx context.Context, message string) (*Answer, error) {
	shouldSearch := intent.DetectSearch(message)

	var retrieved []retrieval.ScoredProduct
	if shouldSearch {
		bounds := intent.ExtractPriceRange(message)

		o.logger.Debug().
			Str("message", message).
			Bool("price_bounded", bounds.Bounded()).
			Msg("Search intent detected")

		results, err := o.searcher.Search(ctx, message, bounds)
		if err != nil {
			return nil, err
		}
		retrieved = results
	}

	prompt := systemPrompt
	var shown []*storage.Product
	if shouldSearch {
		shown = topProducts(retrieved, o.config.TopProducts)
		prompt += "\n\nAvailable Products:\n" + FormatProducts(shown)
	}

	reply, err := o.completions.ChatCompletion(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt},
		{Role: llm.RoleUser, Content: message},
	})
	if err != nil {
		return nil, err
	}

	o.verifyGrounding(reply, shown)

	return &Answer{
		Reply:     reply,
		Products:  shown,
		Timestamp: time.Now().UTC(),
	}, nil
}

// verifyGrounding checks that a reply mentions at least one retrieved product
// by its literal name. Advisory only: a mismatch is logged, never blocked.
func (o *Orchestrator) verifyGrounding(reply string, products []*storage.Product) {
	if len(products) == 0 {
		return
	}

	for _, p := range products {
		if strings.Contains(reply, p.Name) {
			return
		}
	}

	o.logger.Warn().
		Int("products", len(products)).
		Msg("Reply does not mention any retrieved product name")
}

func topProducts(results []retrieval.ScoredProduct, max int) []*storage.Product {
	products := make([]*storage.Product, 0, max)
	for _, r := range results {
		if len(products) >= max {
			break
		}
		products = append(products, r.Product)
	}
	return products
}
