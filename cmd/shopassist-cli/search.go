package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shopassist-ai/shopassist/internal/embedding"
	"github.com/shopassist-ai/shopassist/internal/intent"
	"github.com/shopassist-ai/shopassist/internal/retrieval"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// newSearchCmd creates the search command, which runs the retrieval cascade
// directly so catalog matching can be inspected without the chat layer.
func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run the product retrieval cascade for a query",
		Long: `Runs the same retrieval the chat assistant uses: price bounds are
extracted from the query, the query is cleaned, and the tier cascade
(semantic, lexical, pattern, price-only) is attempted in order.

Use --verbose to see which tier produced the results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), strings.Join(args, " "), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default: configured retrieval cap)")

	return cmd
}

func runSearch(ctx context.Context, query string, limit int) error {
	db, err := storage.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	repo := storage.NewProductRepository(db)

	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		return fmt.Errorf("embedding client: %w", err)
	}

	maxResults := cfg.Retrieval.MaxResults
	if limit > 0 {
		maxResults = limit
	}

	// No cache: debugging wants live tier behavior, not yesterday's answer.
	retriever := retrieval.NewRetriever(logger, repo, embedder, nil, retrieval.Config{
		MaxResults:          maxResults,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
	})

	bounds := intent.ExtractPriceRange(query)

	var spin *spinner.Spinner
	if !outputJSON {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Searching catalog..."
		spin.Start()
	}

	results, err := retriever.Search(ctx, query, bounds)

	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	printSearchResults(query, bounds, results)
	return nil
}

func printSearchResults(query string, bounds intent.PriceRange, results []retrieval.ScoredProduct) {
	header := color.New(color.FgCyan, color.Bold)
	name := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	header.Printf("Results for %q", query)
	if bounds.Bounded() {
		fmt.Printf(" (price bounds: %s)", formatBounds(bounds))
	}
	fmt.Printf(" — %d found\n\n", len(results))

	if len(results) == 0 {
		dim.Println("No products matched.")
		return
	}

	for i, r := range results {
		p := r.Product
		fmt.Printf("%2d. ", i+1)
		name.Print(p.Name)
		fmt.Printf("  €%.2f", p.Price)
		if r.Score > 0 {
			dim.Printf("  (similarity %.3f)", r.Score)
		}
		fmt.Println()

		if p.Brand != nil {
			dim.Printf("    %s", *p.Brand)
			if p.Category != nil {
				dim.Printf(" · %s", *p.Category)
			}
			fmt.Println()
		} else if p.Category != nil {
			dim.Printf("    %s\n", *p.Category)
		}
	}
}

func formatBounds(bounds intent.PriceRange) string {
	switch {
	case bounds.Min != nil && bounds.Max != nil:
		return fmt.Sprintf("€%.0f–€%.0f", *bounds.Min, *bounds.Max)
	case bounds.Max != nil:
		return fmt.Sprintf("up to €%.0f", *bounds.Max)
	case bounds.Min != nil:
		return fmt.Sprintf("from €%.0f", *bounds.Min)
	default:
		return "none"
	}
}
