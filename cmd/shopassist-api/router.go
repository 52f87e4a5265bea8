// Package main provides the chat API server entrypoint.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shopassist-ai/shopassist/cmd/shopassist-api/handlers"
	"github.com/shopassist-ai/shopassist/cmd/shopassist-api/middleware"
	"github.com/shopassist-ai/shopassist/internal/chat"
	"github.com/shopassist-ai/shopassist/internal/config"
	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(
	logger *observability.Logger,
	cfg *config.Config,
	orchestrator *chat.Orchestrator,
	productRepo *storage.ProductRepository,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"shopassist"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, orchestrator)
	productsHandler := handlers.NewProductsHandler(logger, productRepo)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsHandler.List)
			r.Get("/{id}", productsHandler.Get)
		})
	})

	return r
}
