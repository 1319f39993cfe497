package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/taxentia/ingest/ai"
)

// Embedder implements ai.Embedder against the OpenAI embeddings API.
type Embedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	logger    *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.Host

	return &Embedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     openai.EmbeddingModel(config.Model),
		dimension: config.Dimension,
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedding API returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in one
// API request. Rate-limit rejections come back wrapped as ai.ErrRateLimited.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings", "count", len(texts))

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dimension,
	})
	if err != nil {
		err = wrapAPIError(err)
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// wrapAPIError marks HTTP 429 responses as ai.ErrRateLimited so callers can
// tell retryable pressure from hard failures.
func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ai.ErrRateLimited, err)
	}
	return err
}
