package ingestion

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/token"
)

const (
	// DefaultMaxCount is the maximum number of chunks per batch.
	DefaultMaxCount = 40

	// DefaultMaxTokensPerBatch is the token budget for a single embedding request.
	DefaultMaxTokensPerBatch = 3500

	// DefaultMaxTokensPerChunk is the per-chunk token cap. Chunks above it are
	// truncated before batching.
	DefaultMaxTokensPerChunk = 3000

	// charsPerToken converts the token cap into a character cap for truncation.
	charsPerToken = 3
)

// BatchBuilder groups chunks into provider-sized batches, bounded by chunk
// count and by token budget. Oversized chunks are truncated first.
type BatchBuilder struct {
	counter           token.Counter
	maxCount          int
	maxTokensPerBatch int
	maxTokensPerChunk int
	logger            *slog.Logger
}

// BatchOption configures a BatchBuilder.
type BatchOption func(*BatchBuilder) error

// WithMaxCount sets the maximum number of chunks per batch.
// Default is DefaultMaxCount.
func WithMaxCount(count int) BatchOption {
	return func(b *BatchBuilder) error {
		if count < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxCount, count)
		}
		b.maxCount = count
		return nil
	}
}

// WithMaxTokensPerBatch sets the token budget for a single batch.
// Default is DefaultMaxTokensPerBatch.
func WithMaxTokensPerBatch(tokens int) BatchOption {
	return func(b *BatchBuilder) error {
		if tokens < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidTokenBudget, tokens)
		}
		b.maxTokensPerBatch = tokens
		return nil
	}
}

// WithMaxTokensPerChunk sets the per-chunk token cap before truncation.
// Default is DefaultMaxTokensPerChunk.
func WithMaxTokensPerChunk(tokens int) BatchOption {
	return func(b *BatchBuilder) error {
		if tokens < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidTokenBudget, tokens)
		}
		b.maxTokensPerChunk = tokens
		return nil
	}
}

// WithBatchLogger sets a custom logger.
// Default is slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchBuilder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBatchBuilder creates a new BatchBuilder using the given token counter.
func NewBatchBuilder(counter token.Counter, opts ...BatchOption) (*BatchBuilder, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}

	b := &BatchBuilder{
		counter:           counter,
		maxCount:          DefaultMaxCount,
		maxTokensPerBatch: DefaultMaxTokensPerBatch,
		maxTokensPerChunk: DefaultMaxTokensPerChunk,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	b.logger = b.logger.With("component", "batch-builder")

	return b, nil
}

// Build groups chunks into batches, preserving input order. A new batch starts
// when adding the next chunk would exceed the chunk count limit or the token
// budget, provided the current batch is non-empty. A single chunk whose own
// token count exceeds the budget still forms a singleton batch.
func (b *BatchBuilder) Build(chunks []core.Chunk) []core.Batch {
	if len(chunks) == 0 {
		return nil
	}

	var batches []core.Batch
	current := core.Batch{Index: 0}

	for _, chunk := range chunks {
		chunk, tokens := b.Truncate(chunk)

		if len(current.Chunks) > 0 &&
			(len(current.Chunks) >= b.maxCount || current.TokenCount+tokens > b.maxTokensPerBatch) {
			batches = append(batches, current)
			current = core.Batch{Index: len(batches)}
		}

		current.Chunks = append(current.Chunks, chunk)
		current.TokenCounts = append(current.TokenCounts, tokens)
		current.TokenCount += tokens
	}

	batches = append(batches, current)

	b.logger.Debug("built batches", "chunks", len(chunks), "batches", len(batches))

	return batches
}

// Truncate returns the chunk with its token count, shortening the text when
// the count exceeds the per-chunk cap. The input chunk is never modified.
// Truncation is lossy and logged; the returned count is recomputed once from
// the shortened text and accepted as-is. The character cap lands on a rune
// boundary so the result stays valid UTF-8.
func (b *BatchBuilder) Truncate(chunk core.Chunk) (core.Chunk, int) {
	tokens := b.counter.Count(chunk.Text)
	if tokens <= b.maxTokensPerChunk {
		return chunk, tokens
	}

	limit := b.maxTokensPerChunk * charsPerToken
	if limit >= len(chunk.Text) {
		// Denser than charsPerToken assumes; nothing to cut at the
		// character level, so the over-cap count passes through.
		b.logger.Warn("chunk exceeds token cap, character cap not reached",
			"string_id", chunk.StringID,
			"tokens", tokens,
			"chars", len(chunk.Text))
		return chunk, tokens
	}
	for limit > 0 && !utf8.RuneStart(chunk.Text[limit]) {
		limit--
	}

	truncated := chunk
	truncated.Text = chunk.Text[:limit]
	recounted := b.counter.Count(truncated.Text)

	b.logger.Warn("chunk exceeds token cap, truncating",
		"string_id", chunk.StringID,
		"tokens", tokens,
		"truncated_tokens", recounted,
		"chars", limit)

	return truncated, recounted
}

// EstimateTokens returns the total token count of the chunks after any
// truncation, without building batches.
func (b *BatchBuilder) EstimateTokens(chunks []core.Chunk) int {
	total := 0
	for _, chunk := range chunks {
		_, tokens := b.Truncate(chunk)
		total += tokens
	}
	return total
}
