// Package handlers provides HTTP handlers for the chat API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopassist-ai/shopassist/internal/chat"
	"github.com/shopassist-ai/shopassist/internal/llm"
	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

const maxMessageLength = 1000

// ChatHandler handles grounded chat requests.
type ChatHandler struct {
	logger       *observability.Logger
	orchestrator *chat.Orchestrator
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

// ChatRequestDTO represents the API request for a chat turn.
type ChatRequestDTO struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponseDTO represents the API response.
type ChatResponseDTO struct {
	Message   string             `json:"message"`
	Products  []*storage.Product `json:"products"`
	Timestamp string             `json:"timestamp"`
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}
	if len(reqDTO.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message too long", "message must be at most 1000 characters")
		return
	}

	answer, err := h.orchestrator.Respond(ctx, reqDTO.Message)
	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) {
			h.logger.Warn().Msg("Completion service rate limited")
			writeError(w, http.StatusTooManyRequests, "service is busy, please retry shortly", "")
			return
		}

		h.logger.Error().Err(err).Msg("Chat request failed")
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again", "")
		return
	}

	products := answer.Products
	if products == nil {
		products = []*storage.Product{}
	}

	writeJSON(w, http.StatusOK, ChatResponseDTO{
		Message:   answer.Reply,
		Products:  products,
		Timestamp: answer.Timestamp.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["details"] = detail
	}
	writeJSON(w, status, resp)
}
