// Package retrieval implements the cascading product search: semantic vector
// ranking, lexical full-text search, pattern matching, and a price-only tier.
// A tier that fails for infrastructure reasons is skipped, never surfaced; the
// caller always receives a (possibly empty) result set.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopassist-ai/shopassist/internal/cache"
	"github.com/shopassist-ai/shopassist/internal/embedding"
	"github.com/shopassist-ai/shopassist/internal/intent"
	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// ScoredProduct pairs a product with its relevance score. Score is the cosine
// similarity for semantic results and 0 for tiers that produce no score.
type ScoredProduct struct {
	Product *storage.Product `json:"product"`
	Score   float64          `json:"score"`
}

// Store is the catalog access the retriever needs.
type Store interface {
	FullTextSearch(ctx context.Context, query string, bounds intent.PriceRange, limit int) ([]*storage.Product, error)
	PatternSearch(ctx context.Context, query string, bounds intent.PriceRange, limit int) ([]*storage.Product, error)
	ListByPrice(ctx context.Context, bounds intent.PriceRange, limit int) ([]*storage.Product, error)
	ListWithEmbeddings(ctx context.Context) ([]*storage.Product, error)
}

// Config holds retriever settings.
type Config struct {
	MaxResults          int
	SimilarityThreshold float64
	CacheResults        bool
	CacheTTL            time.Duration
}

// Retriever runs the tier cascade against the catalog.
type Retriever struct {
	logger   *observability.Logger
	store    Store
	embedder embedding.Embedder
	cache    cache.Client
	config   Config
}

// NewRetriever creates a retriever. The embedder may be nil, in which case the
// semantic tier is skipped. The cache may be nil to disable result caching.
func NewRetriever(logger *observability.Logger, store Store, embedder embedding.Embedder, cacheClient cache.Client, cfg Config) *Retriever {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Retriever{
		logger:   logger.WithComponent("retrieval"),
		store:    store,
		embedder: embedder,
		cache:    cacheClient,
		config:   cfg,
	}
}

// searchQuery is the normalized form of one retrieval request.
type searchQuery struct {
	raw     string
	cleaned string
	bounds  intent.PriceRange
}

// tier is one strategy in the fallback cascade.
type tier struct {
	name string
	run  func(ctx context.Context, q searchQuery) ([]ScoredProduct, error)
}

// Search runs the cascade for a raw query and optional price bounds. Tiers are
// attempted in order; a tier advances the cascade when it errors or finds
// nothing. An error is returned only when every applicable tier failed, which
// in practice means the data store is unreachable.
func (r *Retriever) Search(ctx context.Context, rawQuery string, bounds intent.PriceRange) ([]ScoredProduct, error) {
	q := searchQuery{
		raw:     rawQuery,
		cleaned: intent.CleanQuery(rawQuery),
		bounds:  bounds,
	}

	r.logger.Debug().
		Str("query", q.raw).
		Str("cleaned", q.cleaned).
		Bool("price_bounded", bounds.Bounded()).
		Msg("Starting retrieval cascade")

	if cached, ok := r.checkCache(ctx, q); ok {
		return cached, nil
	}

	tiers := r.tiersFor(q)

	var tierErrs int
	for _, t := range tiers {
		results, err := t.run(ctx, q)
		if err != nil {
			tierErrs++
			r.logger.Warn().Err(err).Str("tier", t.name).Msg("Retrieval tier failed, falling through")
			continue
		}
		if len(results) == 0 {
			r.logger.Debug().Str("tier", t.name).Msg("Tier found nothing, falling through")
			continue
		}

		r.logger.Info().
			Str("tier", t.name).
			Int("results", len(results)).
			Msg("Retrieval complete")

		r.storeCache(ctx, q, results)
		return results, nil
	}

	if tierErrs == len(tiers) {
		return nil, fmt.Errorf("all retrieval tiers failed, catalog unavailable")
	}

	r.logger.Info().Str("query", q.raw).Msg("No products matched")
	return []ScoredProduct{}, nil
}

// tiersFor selects the applicable tiers in preference order. A cleaned query
// shorter than 2 characters was entirely price and filler words, so text
// matching is pointless and only the price tier runs.
func (r *Retriever) tiersFor(q searchQuery) []tier {
	if len(q.cleaned) < 2 {
		return []tier{{name: "price_only", run: r.priceOnlyTier}}
	}

	tiers := make([]tier, 0, 3)
	if r.embedder != nil {
		tiers = append(tiers, tier{name: "semantic", run: r.semanticTier})
	}
	tiers = append(tiers,
		tier{name: "lexical", run: r.lexicalTier},
		tier{name: "pattern", run: r.patternTier},
	)
	return tiers
}

// semanticTier embeds the cleaned query and ranks stored catalog embeddings by
// cosine similarity in-process.
func (r *Retriever) semanticTier(ctx context.Context, q searchQuery) ([]ScoredProduct, error) {
	queryVec, err := r.embedder.Embed(ctx, q.cleaned)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.store.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	results := make([]ScoredProduct, 0, len(candidates))
	for _, p := range candidates {
		score, err := embedding.Cosine(queryVec, p.Embedding)
		if err != nil {
			// A stored vector from a stale index version; the whole tier is
			// unreliable until the embedding job has been re-run.
			return nil, fmt.Errorf("score product %s: %w", p.ID, err)
		}
		if score < r.config.SimilarityThreshold {
			continue
		}
		if !q.bounds.Contains(p.Price) {
			continue
		}
		results = append(results, ScoredProduct{Product: p, Score: score})
	}

	// Price intent signals an explicit decision criterion, so it dominates
	// the presentation order over similarity.
	if q.bounds.Bounded() {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Product.Price < results[j].Product.Price
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	return capResults(results, r.config.MaxResults), nil
}

// lexicalTier runs Postgres full-text search over the cleaned query.
func (r *Retriever) lexicalTier(ctx context.Context, q searchQuery) ([]ScoredProduct, error) {
	products, err := r.store.FullTextSearch(ctx, q.cleaned, q.bounds, r.config.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return unscored(products, r.config.MaxResults), nil
}

// patternTier performs case-insensitive substring matching.
func (r *Retriever) patternTier(ctx context.Context, q searchQuery) ([]ScoredProduct, error) {
	products, err := r.store.PatternSearch(ctx, q.cleaned, q.bounds, r.config.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("pattern search: %w", err)
	}
	return unscored(products, r.config.MaxResults), nil
}

// priceOnlyTier returns the catalog filtered purely by price bounds.
func (r *Retriever) priceOnlyTier(ctx context.Context, q searchQuery) ([]ScoredProduct, error) {
	products, err := r.store.ListByPrice(ctx, q.bounds, r.config.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("price filter: %w", err)
	}
	return unscored(products, r.config.MaxResults), nil
}

func unscored(products []*storage.Product, max int) []ScoredProduct {
	results := make([]ScoredProduct, 0, len(products))
	for _, p := range products {
		results = append(results, ScoredProduct{Product: p})
	}
	return capResults(results, max)
}

func capResults(results []ScoredProduct, max int) []ScoredProduct {
	if len(results) > max {
		return results[:max]
	}
	return results
}

func (r *Retriever) cacheKey(q searchQuery) string {
	minStr, maxStr := "", ""
	if q.bounds.Min != nil {
		minStr = strconv.FormatFloat(*q.bounds.Min, 'f', 2, 64)
	}
	if q.bounds.Max != nil {
		maxStr = strconv.FormatFloat(*q.bounds.Max, 'f', 2, 64)
	}
	return cache.SearchKey(q.cleaned, minStr, maxStr)
}

func (r *Retriever) checkCache(ctx context.Context, q searchQuery) ([]ScoredProduct, bool) {
	if !r.config.CacheResults || r.cache == nil {
		return nil, false
	}

	data, err := r.cache.Get(ctx, r.cacheKey(q))
	if err != nil {
		return nil, false
	}

	var results []ScoredProduct
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false
	}

	r.logger.Debug().Str("query", q.cleaned).Msg("Retrieval cache hit")
	return results, true
}

func (r *Retriever) storeCache(ctx context.Context, q searchQuery, results []ScoredProduct) {
	if !r.config.CacheResults || r.cache == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.cacheKey(q), data, r.config.CacheTTL); err != nil {
		r.logger.Debug().Err(err).Msg("Retrieval cache write failed")
	}
}
