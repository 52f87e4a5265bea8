package embedding

import (
	"context"
	"strings"
)

// MockClient provides a deterministic embedder for tests. Vectors are derived
// from character positions so equal texts always embed identically.
type MockClient struct {
	dimension int
}

// NewMockClient creates a mock embedder with the given dimension.
func NewMockClient(dimension int) *MockClient {
	if dimension <= 0 {
		dimension = 384
	}
	return &MockClient{dimension: dimension}
}

// Embed generates a deterministic normalized embedding.
func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vec := make([]float32, c.dimension)
	for i, char := range text {
		vec[i%c.dimension] += float32(char) / 1000.0
	}
	return Normalize(vec), nil
}

// EmbedBatch generates deterministic embeddings in input order.
func (c *MockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, vec)
	}
	return vecs, nil
}

// Model returns the mock model name.
func (c *MockClient) Model() string { return "mock-embedding-model" }

// Dimension returns the embedding dimension.
func (c *MockClient) Dimension() int { return c.dimension }

var _ Embedder = (*MockClient)(nil)
