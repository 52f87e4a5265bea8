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

	"github.com/shopassist-ai/shopassist/internal/cache"
	"github.com/shopassist-ai/shopassist/internal/chat"
	"github.com/shopassist-ai/shopassist/internal/embedding"
	"github.com/shopassist-ai/shopassist/internal/llm"
	"github.com/shopassist-ai/shopassist/internal/retrieval"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// newChatCmd creates the chat command, a one-shot grounded answer without the
// HTTP server in between.
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant a one-shot question",
		Long: `Sends one message through the full grounded chat pipeline: intent
detection, retrieval, context formatting, and completion. Prints the
assistant's reply along with the products it was shown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), strings.Join(args, " "))
		},
	}

	return cmd
}

func runChat(ctx context.Context, message string) error {
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

	completions, err := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("completion client: %w", err)
	}

	cacheClient := cache.NewMemoryClient(cfg.Cache.MaxEntries)
	defer cacheClient.Close()

	retriever := retrieval.NewRetriever(logger, repo, embedder, cacheClient, retrieval.Config{
		MaxResults:          cfg.Retrieval.MaxResults,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		CacheResults:        cfg.Retrieval.CacheResults,
		CacheTTL:            cfg.Cache.TTL,
	})

	orchestrator := chat.NewOrchestrator(logger, retriever, completions, chat.Config{
		TopProducts: cfg.Retrieval.TopProducts,
	})

	var spin *spinner.Spinner
	if !outputJSON {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Thinking..."
		spin.Start()
	}

	answer, err := orchestrator.Respond(ctx, message)

	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Message   string             `json:"message"`
			Products  []*storage.Product `json:"products"`
			Timestamp string             `json:"timestamp"`
		}{
			Message:   answer.Reply,
			Products:  answer.Products,
			Timestamp: answer.Timestamp.Format(time.RFC3339),
		})
	}

	color.New(color.FgCyan, color.Bold).Println("Assistant:")
	fmt.Println(answer.Reply)

	if len(answer.Products) > 0 {
		fmt.Println()
		color.New(color.Faint).Println("Products shown to the model:")
		for _, p := range answer.Products {
			fmt.Printf("  - %s (€%.2f)\n", p.Name, p.Price)
		}
	}

	return nil
}
