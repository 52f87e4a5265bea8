package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopassist-ai/shopassist/internal/chat"
	"github.com/shopassist-ai/shopassist/internal/intent"
	"github.com/shopassist-ai/shopassist/internal/llm"
	"github.com/shopassist-ai/shopassist/internal/observability"
	"github.com/shopassist-ai/shopassist/internal/retrieval"
	"github.com/shopassist-ai/shopassist/internal/storage"
)

type stubSearcher struct {
	results []retrieval.ScoredProduct
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, rawQuery string, bounds intent.PriceRange) ([]retrieval.ScoredProduct, error) {
	return s.results, s.err
}

func newChatHandler(searcher chat.Searcher, completions llm.CompletionService) *ChatHandler {
	orchestrator := chat.NewOrchestrator(observability.Nop(), searcher, completions, chat.Config{})
	return NewChatHandler(observability.Nop(), orchestrator)
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatHandler_Chat_Success(t *testing.T) {
	searcher := &stubSearcher{results: []retrieval.ScoredProduct{
		{Product: &storage.Product{Name: "UltraBook Pro 15", Price: 1299.99, Stock: 3}},
	}}
	mock := &llm.MockService{Reply: "The UltraBook Pro 15 costs €1299.99."}

	h := newChatHandler(searcher, mock)
	rec := postChat(t, h, `{"message":"show me laptops"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ChatResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The UltraBook Pro 15 costs €1299.99.", resp.Message)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "UltraBook Pro 15", resp.Products[0].Name)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestChatHandler_Chat_EmptyMessage(t *testing.T) {
	h := newChatHandler(&stubSearcher{}, &llm.MockService{Reply: "unused"})
	rec := postChat(t, h, `{"message":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message is required")
}

func TestChatHandler_Chat_MessageTooLong(t *testing.T) {
	h := newChatHandler(&stubSearcher{}, &llm.MockService{Reply: "unused"})

	long := strings.Repeat("a", maxMessageLength+1)
	rec := postChat(t, h, `{"message":"`+long+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message too long")
}

func TestChatHandler_Chat_MalformedBody(t *testing.T) {
	h := newChatHandler(&stubSearcher{}, &llm.MockService{Reply: "unused"})
	rec := postChat(t, h, `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestChatHandler_Chat_RateLimited(t *testing.T) {
	h := newChatHandler(&stubSearcher{}, &llm.MockService{Err: llm.ErrRateLimited})
	rec := postChat(t, h, `{"message":"show me laptops"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "busy")
}

func TestChatHandler_Chat_InternalError(t *testing.T) {
	searcher := &stubSearcher{err: assert.AnError}

	h := newChatHandler(searcher, &llm.MockService{Reply: "unused"})
	rec := postChat(t, h, `{"message":"show me laptops"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error(),
		"internal details stay out of client responses")
}

func TestChatHandler_Chat_NoProductsIsEmptyArray(t *testing.T) {
	h := newChatHandler(&stubSearcher{}, &llm.MockService{Reply: "Hello!"})
	rec := postChat(t, h, `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`,
		"absent products serialize as an empty array, not null")
}
