package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

// ProductsHandler serves catalog lookups for the chat UI.
type ProductsHandler struct {
	logger *observability.Logger
	repo   *storage.ProductRepository
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(logger *observability.Logger, repo *storage.ProductRepository) *ProductsHandler {
	return &ProductsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Get handles GET /api/v1/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id", "")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("product_id", id.String()).Msg("Product lookup failed")
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again", "")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// List handles GET /api/v1/products?category=. Without a category the full
// catalog is returned ordered by name.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		products []*storage.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.repo.ListByCategory(ctx, category)
	} else {
		products, err = h.repo.ListAll(ctx)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Product listing failed")
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again", "")
		return
	}

	if products == nil {
		products = []*storage.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
