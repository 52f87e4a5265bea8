package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/shopassist-ai/shopassist/internal/embedding"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// newEmbedCmd creates the embed command, which generates embeddings for every
// catalog product and writes them back. Existing embeddings are overwritten,
// so re-running after a model change refreshes the whole index.
func newEmbedCmd() *cobra.Command {
	var (
		workers int
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Generate embeddings for all catalog products",
		Long: `Fetches every product, embeds its name and description, and stores the
vector back on the product row. Safe to re-run: vectors are overwritten.

By default products are processed one at a time with a short delay between
requests to stay under embedding-service rate limits. Use --workers to
parallelize when the service allows it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd.Context(), workers, delay)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "number of concurrent embedding workers")
	cmd.Flags().DurationVar(&delay, "delay", 100*time.Millisecond, "pause between requests per worker")

	return cmd
}

// embedSummary is the machine-readable job result for --json mode.
type embedSummary struct {
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Model     string `json:"model"`
	Duration  string `json:"duration"`
}

func runEmbed(ctx context.Context, workers int, delay time.Duration) error {
	if workers < 1 {
		workers = 1
	}

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

	products, err := repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		logger.Info().Msg("Catalog is empty, nothing to embed")
		return nil
	}

	logger.Info().
		Int("products", len(products)).
		Int("workers", workers).
		Str("model", embedder.Model()).
		Msg("Starting embedding job")

	var bar *progressbar.ProgressBar
	if !outputJSON {
		bar = progressbar.NewOptions(len(products),
			progressbar.OptionSetDescription("Embedding products"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	start := time.Now()

	var succeeded, failed atomic.Int64
	jobs := make(chan *storage.Product)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := embedProduct(ctx, repo, embedder, p); err != nil {
					failed.Add(1)
					logger.Warn().Err(err).
						Str("product_id", p.ID.String()).
						Str("product_name", p.Name).
						Msg("Embedding failed")
				} else {
					succeeded.Add(1)
				}
				if bar != nil {
					_ = bar.Add(1)
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}()
	}

feed:
	for _, p := range products {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	summary := embedSummary{
		Total:     len(products),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Model:     embedder.Model(),
		Duration:  time.Since(start).Round(time.Millisecond).String(),
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	fmt.Printf("\nEmbedding complete: %d succeeded, %d failed of %d products (%s)\n",
		summary.Succeeded, summary.Failed, summary.Total, summary.Duration)
	if summary.Failed > 0 {
		return fmt.Errorf("%d products failed to embed", summary.Failed)
	}
	return nil
}

func embedProduct(ctx context.Context, repo *storage.ProductRepository, embedder embedding.Embedder, p *storage.Product) error {
	vec, err := embedder.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if err := repo.UpdateEmbedding(ctx, p.ID, vec); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}
