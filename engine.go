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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taxentia/ingest/ai"
	"github.com/taxentia/ingest/ai/openai"
	"github.com/taxentia/ingest/chunk"
	"github.com/taxentia/ingest/config"
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/ingestion"
	"github.com/taxentia/ingest/storage"
	"github.com/taxentia/ingest/storage/badger"
	"github.com/taxentia/ingest/token"
)

// ErrConfigRequired indicates New was called without configuration.
var ErrConfigRequired = errors.New("config required")

// Engine ties the ingestion components together: checkpoint storage, the
// embedding provider, and factories for configured pipelines.
type Engine struct {
	cfg         *config.Config
	backend     *badger.Backend
	checkpoints storage.CheckpointRepository
	provider    ai.EmbeddingProvider
	counter     token.Counter
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.EmbeddingProvider
	inMemory bool
}

// WithProvider substitutes the embedding provider, for example a local
// OpenAI-compatible server or a mock. When unset the OpenAI provider is
// built from the configuration.
func WithProvider(provider ai.EmbeddingProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps checkpoints in memory instead of on disk,
// ignoring the configured checkpoint directory.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// New opens checkpoint storage at the configured directory and prepares the
// embedding provider and token counter.
func New(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.CheckpointDir, options.inMemory)
	if err != nil {
		return nil, err
	}

	checkpoints, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AI())
		if err != nil {
			checkpoints.Close()
			backend.Close()
			return nil, err
		}
	}

	logger := slog.Default()
	return &Engine{
		cfg:         cfg,
		backend:     backend,
		checkpoints: checkpoints,
		provider:    provider,
		counter:     token.NewCounter(logger),
		logger:      logger,
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.checkpoints.Close(); err != nil {
		e.logger.Error("error closing checkpoint repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Checkpoints returns the checkpoint repository.
func (e *Engine) Checkpoints() storage.CheckpointRepository {
	return e.checkpoints
}

// Checkpoint returns the saved run state for a document key, or
// storage.ErrNotFound when none exists.
func (e *Engine) Checkpoint(ctx context.Context, documentKey string) (*core.Checkpoint, error) {
	cp, err := e.checkpoints.LoadCheckpoint(ctx, documentKey)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, documentKey)
	}
	return cp, nil
}

// NewPipeline builds an ingestion pipeline from the configured chunk sizes,
// batch limits, and pacing, wired to the engine's provider and checkpoint
// storage. Additional options override the configured ones.
func (e *Engine) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	chunker, err := chunk.NewChunker(
		chunk.WithMaxChunkSize(e.cfg.MaxChunkSize),
		chunk.WithOverlapSize(e.cfg.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	builder, err := ingestion.NewBatchBuilder(e.counter,
		ingestion.WithMaxCount(e.cfg.BatchSize),
		ingestion.WithMaxTokensPerBatch(e.cfg.MaxTokensPerBatch),
		ingestion.WithMaxTokensPerChunk(e.cfg.MaxTokensPerChunk),
	)
	if err != nil {
		return nil, err
	}

	orchestrator, err := ingestion.NewOrchestrator(e.provider,
		ingestion.WithRetryWait(e.cfg.RetryWait),
		ingestion.WithInterBatchDelay(e.cfg.InterBatchDelay),
		ingestion.WithPricePerMillionTokens(e.cfg.PricePerMillionTokens),
	)
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{
		ingestion.WithCheckpoints(e.checkpoints),
		ingestion.WithCheckpointInterval(e.cfg.CheckpointInterval),
	}
	return ingestion.NewPipeline(chunker, builder, orchestrator, append(base, opts...)...)
}
