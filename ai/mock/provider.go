package mock

import "github.com/taxentia/ingest/ai"

// MockProvider is a test double for ai.EmbeddingProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	dimension int
	closed    bool
}

// NewMockProvider creates a provider whose embedder produces deterministic
// vectors of the given dimension.
//
// Returns ai.EmbeddingProvider since it's the primary entry point; use
// GetMockEmbedder to reach the concrete embedder for assertions.
func NewMockProvider(dimension int) ai.EmbeddingProvider {
	return &MockProvider{
		embedder:  &MockEmbedder{Dim: dimension},
		dimension: dimension,
	}
}

// Embedder returns the mock embedding service.
func (m *MockProvider) Embedder() ai.Embedder {
	return m.embedder
}

// Dimension returns the configured vector size.
func (m *MockProvider) Dimension() int {
	return m.dimension
}

// Close marks the provider closed.
func (m *MockProvider) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockProvider) Closed() bool {
	return m.closed
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (m *MockProvider) GetMockEmbedder() *MockEmbedder {
	return m.embedder
}
