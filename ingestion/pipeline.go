package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/taxentia/ingest/chunk"
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/storage"
)

// DefaultCheckpointInterval is the number of batches embedded between
// checkpoint writes.
const DefaultCheckpointInterval = 5

// Pipeline runs the full ingestion flow: chunk documents concurrently, group
// chunks into batches, and embed them sequentially with optional
// checkpoint-based resume.
type Pipeline struct {
	chunker            *chunk.Chunker
	builder            *BatchBuilder
	orchestrator       *Orchestrator
	checkpoints        storage.CheckpointRepository
	checkpointInterval int
	pool               *ants.Pool
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent chunking.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithCheckpoints enables checkpoint-based resume through the given
// repository. Default is none: runs are never checkpointed or resumed.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		if repo == nil {
			return ErrCheckpointRepositoryRequired
		}
		p.checkpoints = repo
		return nil
	}
}

// WithCheckpointInterval sets how many batches are embedded between
// checkpoint writes. Default is DefaultCheckpointInterval.
func WithCheckpointInterval(interval int) Option {
	return func(p *Pipeline) error {
		if interval < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
		}
		p.checkpointInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline from its collaborators.
func NewPipeline(
	chunker *chunk.Chunker,
	builder *BatchBuilder,
	orchestrator *Orchestrator,
	opts ...Option,
) (*Pipeline, error) {
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if builder == nil {
		return nil, ErrBatchBuilderRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunker:            chunker,
		builder:            builder,
		orchestrator:       orchestrator,
		checkpointInterval: DefaultCheckpointInterval,
		pool:               pool,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// RunResult aggregates the output of a pipeline run.
type RunResult struct {
	Embedded []core.EmbeddedChunk
	Totals   core.RunTotals
	Skipped  int // chunks skipped because a checkpoint already covered them
}

// ChunkDocuments splits all documents concurrently and returns their chunks
// concatenated in input order.
func (p *Pipeline) ChunkDocuments(docs []chunk.Document) ([]core.Chunk, error) {
	byDoc, err := p.chunkAll(docs)
	if err != nil {
		return nil, err
	}

	var chunks []core.Chunk
	for _, docChunks := range byDoc {
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

// Run chunks, batches, and embeds all documents. Chunking is concurrent;
// embedding is strictly sequential. When a checkpoint repository is
// configured, each document's progress is saved every checkpointInterval
// batches and an interrupted run resumes at the failed batch.
func (p *Pipeline) Run(ctx context.Context, docs []chunk.Document) (*RunResult, error) {
	byDoc, err := p.chunkAll(docs)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := p.runDocument(ctx, docs[i], byDoc[i], result); err != nil {
			return result, fmt.Errorf("document %d (%s): %w", i, docs[i].Metadata.Citation, err)
		}
	}

	p.logger.Info("ingestion run complete",
		"documents", len(docs),
		"chunks", result.Totals.Chunks,
		"skipped_chunks", result.Skipped,
		"tokens", result.Totals.Tokens,
		"cost_usd", result.Totals.CostUSD)

	return result, nil
}

// chunkAll splits every document on the worker pool, keeping per-document
// results in input order.
func (p *Pipeline) chunkAll(docs []chunk.Document) ([][]core.Chunk, error) {
	results := make([][]core.Chunk, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = p.chunker.Split(docs[i].Text, docs[i].Metadata)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %d (%s): %w", i, docs[i].Metadata.Citation, err)
		}
	}

	return results, nil
}

// runDocument embeds one document's chunks, honoring any saved checkpoint.
func (p *Pipeline) runDocument(ctx context.Context, doc chunk.Document, chunks []core.Chunk, result *RunResult) error {
	if len(chunks) == 0 {
		return nil
	}

	batches := p.builder.Build(chunks)
	documentKey := doc.Metadata.DocumentKey()
	fingerprint := core.Fingerprint(chunk.Normalize(doc.Text))

	start, docTokens, err := p.resumePoint(ctx, documentKey, fingerprint, len(chunks), len(batches))
	if err != nil {
		return err
	}
	for _, batch := range batches[:start] {
		result.Skipped += batch.Size()
	}

	done := start
	for done < len(batches) {
		group := batches[done:min(done+p.checkpointInterval, len(batches))]

		records, runErr := p.orchestrator.Run(ctx, group)
		result.Embedded = append(result.Embedded, records...)

		totals := p.orchestrator.Totals()
		result.Totals.Chunks += totals.Chunks
		result.Totals.Batches += totals.Batches
		result.Totals.Tokens += totals.Tokens
		result.Totals.CostUSD += totals.CostUSD
		done += totals.Batches
		docTokens += totals.Tokens

		if runErr != nil {
			p.saveCheckpoint(ctx, &core.Checkpoint{
				DocumentKey: documentKey,
				Fingerprint: fingerprint,
				TotalChunks: len(chunks),
				NextBatch:   done,
				TokensUsed:  docTokens,
			})
			return runErr
		}

		if done < len(batches) {
			p.saveCheckpoint(ctx, &core.Checkpoint{
				DocumentKey: documentKey,
				Fingerprint: fingerprint,
				TotalChunks: len(chunks),
				NextBatch:   done,
				TokensUsed:  docTokens,
			})
			if err := p.orchestrator.sleep(ctx, p.orchestrator.interBatchDelay); err != nil {
				return err
			}
		}
	}

	if p.checkpoints != nil {
		if err := p.checkpoints.DeleteCheckpoint(ctx, documentKey); err != nil {
			p.logger.Error("error clearing checkpoint", "document_key", documentKey, "err", err)
		}
	}

	return nil
}

// resumePoint loads any saved checkpoint for the document and returns the
// batch index to start at plus the tokens already spent. A checkpoint whose
// fingerprint or chunk count no longer matches the document is discarded.
func (p *Pipeline) resumePoint(ctx context.Context, documentKey, fingerprint string, totalChunks, totalBatches int) (int, int, error) {
	if p.checkpoints == nil {
		return 0, 0, nil
	}

	checkpoint, err := p.checkpoints.LoadCheckpoint(ctx, documentKey)
	if err != nil {
		return 0, 0, fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint == nil {
		return 0, 0, nil
	}

	if checkpoint.Fingerprint != fingerprint || checkpoint.TotalChunks != totalChunks {
		p.logger.Warn("document changed since checkpoint, restarting",
			"document_key", documentKey)
		return 0, 0, nil
	}

	start := checkpoint.NextBatch
	if start > totalBatches {
		start = totalBatches
	}

	p.logger.Info("resuming from checkpoint",
		"document_key", documentKey,
		"next_batch", start,
		"tokens_used", checkpoint.TokensUsed)

	return start, checkpoint.TokensUsed, nil
}

// saveCheckpoint persists run state. Failures are logged but do not fail
// the run.
func (p *Pipeline) saveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) {
	if p.checkpoints == nil {
		return
	}
	if err := p.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		p.logger.Error("error saving checkpoint",
			"document_key", checkpoint.DocumentKey, "err", err)
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
