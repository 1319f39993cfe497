// Copyright 2025 Taxentia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxentia/ingest/ai"
	"github.com/taxentia/ingest/core"
)

const (
	// DefaultRetryWait is the fixed wait before the single rate-limit retry.
	DefaultRetryWait = 5 * time.Second

	// DefaultInterBatchDelay is the pause between consecutive batches.
	DefaultInterBatchDelay = 100 * time.Millisecond

	// DefaultPricePerMillionTokens is the embedding price used for cost
	// estimates, in USD per million tokens.
	DefaultPricePerMillionTokens = 0.02
)

// EstimateCost returns the embedding cost in USD for a token count at the
// given price per million tokens.
func EstimateCost(tokens int, pricePerMillion float64) float64 {
	return float64(tokens) / 1_000_000 * pricePerMillion
}

// Orchestrator sends batches to the embedding provider strictly sequentially.
// One batch is in flight at a time so token and rate accounting stay simple.
type Orchestrator struct {
	embedder        ai.Embedder
	dimension       int
	retryWait       time.Duration
	interBatchDelay time.Duration
	pricePerMillion float64
	progress        *ProgressTracker
	totals          core.RunTotals
	logger          *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithRetryWait sets the fixed wait before the single rate-limit retry.
// Default is DefaultRetryWait.
func WithRetryWait(wait time.Duration) OrchestratorOption {
	return func(o *Orchestrator) error {
		if wait < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDelay, wait)
		}
		o.retryWait = wait
		return nil
	}
}

// WithInterBatchDelay sets the pause between consecutive batches. The delay
// is never applied after the last batch. Default is DefaultInterBatchDelay.
func WithInterBatchDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) error {
		if delay < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDelay, delay)
		}
		o.interBatchDelay = delay
		return nil
	}
}

// WithPricePerMillionTokens sets the price used for cost estimates.
// Default is DefaultPricePerMillionTokens.
func WithPricePerMillionTokens(price float64) OrchestratorOption {
	return func(o *Orchestrator) error {
		if price < 0 {
			return fmt.Errorf("%w: %f", ErrInvalidPrice, price)
		}
		o.pricePerMillion = price
		return nil
	}
}

// WithProgress sets a progress tracker updated after each batch.
// Default is none.
func WithProgress(progress *ProgressTracker) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.progress = progress
		return nil
	}
}

// WithOrchestratorLogger sets a custom logger.
// Default is slog.Default().
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an Orchestrator backed by the provider's embedder.
// The provider's configured dimension is asserted against every returned
// vector.
func NewOrchestrator(provider ai.EmbeddingProvider, opts ...OrchestratorOption) (*Orchestrator, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	o := &Orchestrator{
		embedder:        provider.Embedder(),
		dimension:       provider.Dimension(),
		retryWait:       DefaultRetryWait,
		interBatchDelay: DefaultInterBatchDelay,
		pricePerMillion: DefaultPricePerMillionTokens,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.logger = o.logger.With("component", "orchestrator")

	return o, nil
}

// Totals returns the cumulative counters for the current or most recent run.
// After a failed run they reflect the batches that completed, which is what
// a caller needs to record a resume point.
func (o *Orchestrator) Totals() core.RunTotals {
	return o.totals
}

// Run embeds all batches in order and returns one EmbeddedChunk per input
// chunk, preserving order.
//
// A rate-limited request is retried exactly once after a fixed wait; a second
// rate limit, a dimension mismatch, or any other provider failure aborts the
// run with no records. Cancellation is observed between batches and returns
// the records of the batches that completed, alongside the context error.
func (o *Orchestrator) Run(ctx context.Context, batches []core.Batch) ([]core.EmbeddedChunk, error) {
	o.totals = core.RunTotals{}
	if len(batches) == 0 {
		return nil, nil
	}

	total := 0
	for i := range batches {
		total += batches[i].Size()
	}

	o.logger.Info("starting embedding run", "batches", len(batches), "chunks", total)
	if o.progress != nil {
		o.progress.Start(total)
	}

	embedded := make([]core.EmbeddedChunk, 0, total)
	for i := range batches {
		batch := &batches[i]

		if err := ctx.Err(); err != nil {
			o.logger.Warn("run cancelled", "completed_batches", o.totals.Batches)
			return embedded, err
		}

		records, err := o.embedBatch(ctx, batch)
		if err != nil {
			err = fmt.Errorf("batch %d (%d chunks, %d tokens): %w",
				batch.Index, batch.Size(), batch.TokenCount, err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				o.logger.Warn("run cancelled", "completed_batches", o.totals.Batches)
				return embedded, err
			}
			o.logger.Error("embedding run aborted", "err", err)
			return nil, err
		}

		embedded = append(embedded, records...)
		o.totals.Chunks += batch.Size()
		o.totals.Batches++
		o.totals.Tokens += batch.TokenCount
		o.totals.CostUSD += batch.CostEstimate(o.pricePerMillion)
		o.logger.Debug("running total", "tokens", o.totals.Tokens, "cost_usd", o.totals.CostUSD)

		if o.progress != nil {
			o.progress.Update(len(embedded))
		}

		if i < len(batches)-1 {
			if err := o.sleep(ctx, o.interBatchDelay); err != nil {
				return embedded, err
			}
		}
	}

	if o.progress != nil {
		o.progress.Finish()
	}
	o.logger.Info("embedding run complete",
		"chunks", o.totals.Chunks,
		"batches", o.totals.Batches,
		"tokens", o.totals.Tokens,
		"cost_usd", o.totals.CostUSD)

	return embedded, nil
}

// embedBatch sends one batch to the provider and converts the response into
// EmbeddedChunk records.
func (o *Orchestrator) embedBatch(ctx context.Context, batch *core.Batch) ([]core.EmbeddedChunk, error) {
	texts := make([]string, len(batch.Chunks))
	for i := range batch.Chunks {
		texts[i] = batch.Chunks[i].Text
	}

	vectors, err := o.embedder.EmbedTexts(ctx, texts)
	if errors.Is(err, ai.ErrRateLimited) {
		o.logger.Warn("provider rate limited, waiting before retry",
			"batch", batch.Index, "wait", o.retryWait)
		if sleepErr := o.sleep(ctx, o.retryWait); sleepErr != nil {
			return nil, sleepErr
		}
		vectors, err = o.embedder.EmbedTexts(ctx, texts)
		if errors.Is(err, ai.ErrRateLimited) {
			return nil, fmt.Errorf("%w: %w", ErrRateLimitExhausted, err)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(batch.Chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d",
			len(batch.Chunks), len(vectors))
	}

	records := make([]core.EmbeddedChunk, len(batch.Chunks))
	for i := range batch.Chunks {
		record, err := core.NewEmbeddedChunk(batch.Chunks[i], vectors[i], o.dimension, batch.TokenCounts[i])
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	return records, nil
}

// sleep waits for the given delay, honoring context cancellation.
func (o *Orchestrator) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
